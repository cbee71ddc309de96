// Command seed provisions the demo accounts used for local development:
// one admin, one manager and one employee, plus a default sede.
package main

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"

	"github.com/multihub/multihub-api/internal/core/domain"
	mongodb "github.com/multihub/multihub-api/internal/infrastructure/db/mongo"
	"github.com/multihub/multihub-api/internal/pkg/config"
	"github.com/multihub/multihub-api/pkg/logger"
)

type seedUser struct {
	email    string
	name     string
	password string
	role     domain.Role
}

var seedUsers = []seedUser{
	{"admin@multihub.local", "Administrador", "admin123", domain.RoleAdmin},
	{"manager@multihub.local", "Gerente", "manager123", domain.RoleManager},
	{"employee@multihub.local", "Empleado", "employee123", domain.RoleEmployee},
}

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: true})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer client.Disconnect(ctx)

	repo := mongodb.NewUserRepository(db)
	if err := repo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure indexes")
	}

	sedeID := seedSede(ctx, db, log)

	now := time.Now().UTC()
	for _, su := range seedUsers {
		hash, err := bcrypt.GenerateFromPassword([]byte(su.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatal().Err(err).Msg("hash password")
		}

		user := &domain.User{
			Email:        su.email,
			Name:         su.name,
			PasswordHash: string(hash),
			Role:         su.role,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if su.role == domain.RoleEmployee {
			user.SedeID = sedeID
		}

		created, err := repo.Create(ctx, user)
		if err == domain.ErrEmailTaken {
			log.Info().Str("email", su.email).Msg("user already seeded, skipping")
			continue
		}
		if err != nil {
			log.Fatal().Err(err).Str("email", su.email).Msg("seed user failed")
		}
		log.Info().Str("email", created.Email).Str("role", string(created.Role)).Msg("user seeded")
	}

	log.Info().Msg("seeding completed")
}

// seedSede upserts the default demo sede and returns its id. Sedes carry no
// business logic in this service; the record only gives seeded employees a
// site assignment.
func seedSede(ctx context.Context, db *mongo.Database, log zerolog.Logger) string {
	coll := db.Collection("sedes")
	now := time.Now().UTC()

	res := coll.FindOneAndUpdate(ctx,
		bson.M{"name": "Sede Central"},
		bson.M{
			"$setOnInsert": bson.M{
				"name":       "Sede Central",
				"address":    "Calle Mayor 1",
				"city":       "Madrid",
				"created_at": now,
				"updated_at": now,
			},
		},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	)

	var sede struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := res.Decode(&sede); err != nil {
		log.Fatal().Err(err).Msg("seed sede failed")
	}
	log.Info().Str("sede_id", sede.ID.Hex()).Msg("sede seeded")
	return sede.ID.Hex()
}
