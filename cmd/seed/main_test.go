package main

import (
	"context"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/bluecarbon/registry/internal/core/domain"
	"github.com/bluecarbon/registry/internal/infrastructure/config"
	"github.com/bluecarbon/registry/internal/infrastructure/db/memory"
)

func TestSeedAdmin_Idempotent(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewStore().Users()
	sc := config.SeedConfig{
		AdminEmail:     " Admin@Example.com ",
		AdminPassword:  "s3cret-password",
		AdminFirstName: "Registry",
		AdminLastName:  "Admin",
	}

	created, err := seedAdmin(ctx, repo, sc, bcrypt.MinCost)
	if err != nil || !created {
		t.Fatalf("first seed: created=%v err=%v", created, err)
	}

	created, err = seedAdmin(ctx, repo, sc, bcrypt.MinCost)
	if err != nil || created {
		t.Fatalf("second seed should be a no-op: created=%v err=%v", created, err)
	}

	u, err := repo.FindByEmail(ctx, "admin@example.com")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if u.Role != domain.RoleAdmin || !u.IsActive {
		t.Fatalf("unexpected admin: %+v", u)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(sc.AdminPassword)) != nil {
		t.Fatalf("password hash does not match")
	}
}
