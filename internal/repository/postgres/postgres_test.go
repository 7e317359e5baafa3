package postgres_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/Shivanand-hulikatti/eventhub/internal/database"
	"github.com/Shivanand-hulikatti/eventhub/internal/logger"
	"github.com/Shivanand-hulikatti/eventhub/internal/repository/postgres"
	"github.com/Shivanand-hulikatti/eventhub/internal/repository/repotest"
)

func TestContract(t *testing.T) {
	_ = godotenv.Load("../../../.env")
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx := context.Background()
	log := logger.Discard()
	pool, err := database.NewPool(ctx, dsn, log)
	if err != nil {
		t.Fatalf("db: %v", err)
	}
	t.Cleanup(pool.Close)
	if err := database.Migrate(ctx, pool, log); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	repotest.Run(t, repotest.Backend{
		Users:     postgres.NewUserRepository(pool),
		Events:    postgres.NewEventRepository(pool),
		MissingID: uuid.NewString,
	})
}
