package mongo

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bluecarbon/registry/internal/core/domain"
	"github.com/bluecarbon/registry/internal/core/ports"
)

func TestUserListFilter(t *testing.T) {
	active := true
	f := userListFilter(ports.ListUsersFilter{Role: domain.RoleIndustry, Active: &active, Search: "a.b+c"})

	if f["role"] != "industry" || f["is_active"] != true {
		t.Fatalf("unexpected filter: %v", f)
	}
	or, ok := f["$or"].(bson.A)
	if !ok || len(or) != 3 {
		t.Fatalf("expected three search clauses, got %v", f["$or"])
	}
	re := or[0].(bson.M)["email"].(primitive.Regex)
	if re.Pattern != `a\.b\+c` || re.Options != "i" {
		t.Fatalf("search must be escaped and case-insensitive, got %+v", re)
	}

	if empty := userListFilter(ports.ListUsersFilter{}); len(empty) != 0 {
		t.Fatalf("expected empty filter, got %v", empty)
	}
}

func TestUserUpdateSet_OnlyProvidedFields(t *testing.T) {
	now := time.Now().UTC()
	role := domain.RoleGovernment
	set := userUpdateSet(ports.UserUpdate{Role: &role}, now)

	if len(set) != 2 || set["role"] != "government" || set["updated_at"] != now {
		t.Fatalf("unexpected $set: %v", set)
	}
}

func TestMongoUser_RoundTrip(t *testing.T) {
	u := &domain.User{
		FirstName: "Asha",
		LastName:  "Rao",
		Email:     " Asha@Example.com",
		Role:      domain.RoleCommunity,
		IsActive:  true,
	}
	doc := toMongoUser(u)
	doc.ID = primitive.NewObjectID()

	back := doc.toDomain()
	if back.Email != "asha@example.com" || back.ID != doc.ID.Hex() || back.Role != domain.RoleCommunity {
		t.Fatalf("unexpected round trip: %+v", back)
	}

	legacy := (&mongoUser{ID: primitive.NewObjectID(), Email: "legacy@example.com"}).toDomain()
	if legacy.Role != domain.DefaultRole {
		t.Fatalf("expected missing role to decode as %s, got %q", domain.DefaultRole, legacy.Role)
	}
}
