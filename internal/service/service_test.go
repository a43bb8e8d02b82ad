package service

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"chorequest/internal/config"
	"chorequest/internal/database"
	"chorequest/internal/models"
	"chorequest/internal/repository"
	"chorequest/internal/security"
	"chorequest/migrations"
)

// testEnv wires the full service stack against a throwaway SQLite database.
type testEnv struct {
	db *database.DB

	userRepo   *repository.UserRepository
	familyRepo *repository.FamilyRepository
	kidRepo    *repository.KidRepository
	taskRepo   *repository.TaskRepository
	logRepo    *repository.PointLogRepository
	streakRepo *repository.StreakRepository

	perms    *PermissionService
	ledger   *LedgerService
	streaks  *StreakService
	tasks    *TaskService
	families *FamilyService
	rewards  *RewardService
	auth     *AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations(migrations.FS); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	env := &testEnv{
		db:         db,
		userRepo:   repository.NewUserRepository(db),
		familyRepo: repository.NewFamilyRepository(db),
		kidRepo:    repository.NewKidRepository(db),
		taskRepo:   repository.NewTaskRepository(db),
		logRepo:    repository.NewPointLogRepository(db),
		streakRepo: repository.NewStreakRepository(db),
	}

	cfg := &config.Config{GemRatio: models.DefaultGemRatio}
	email, err := NewEmailService(cfg)
	if err != nil {
		t.Fatalf("Failed to create email service: %v", err)
	}
	invitationRepo := repository.NewInvitationRepository(db)
	rewardRepo := repository.NewRewardRepository(db)
	tokens := security.NewTokenCodec("test-secret", time.Hour)

	env.perms = NewPermissionService(env.familyRepo, env.kidRepo)
	env.ledger = NewLedgerService(db, env.kidRepo, env.logRepo, env.perms, cfg.GemRatio)
	env.streaks = NewStreakService(db, env.streakRepo, env.ledger, env.perms)
	env.tasks = NewTaskService(db, env.taskRepo, env.streaks, env.ledger, env.perms)
	env.families = NewFamilyService(db, env.familyRepo, env.kidRepo, env.userRepo, invitationRepo, email, env.perms)
	env.rewards = NewRewardService(db, rewardRepo, env.ledger, env.perms)
	env.auth = NewAuthService(cfg, env.userRepo, env.kidRepo, env.families, tokens)

	return env
}

var testUserSeq int

// createGuardian creates a user with their own family and returns the user,
// their actor and the family.
func (env *testEnv) createGuardian(t *testing.T, name string) (*models.User, Actor, *models.Family) {
	t.Helper()
	testUserSeq++
	user, err := env.userRepo.CreateUser(fmt.Sprintf("%s%d@example.com", name, testUserSeq), "hash", name)
	if err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	actor := Actor{UserID: user.ID}
	family, err := env.families.CreateFamily(user.ID, name+"'s Family")
	if err != nil {
		t.Fatalf("Failed to create family: %v", err)
	}
	return user, actor, family
}

// addGuardian creates a user and adds them to the family with the given
// role and permission.
func (env *testEnv) addGuardian(t *testing.T, familyID int64, role models.Role, permission models.Permission) (*models.User, Actor) {
	t.Helper()
	testUserSeq++
	user, err := env.userRepo.CreateUser(fmt.Sprintf("member%d@example.com", testUserSeq), "hash", "Member")
	if err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	if err := env.familyRepo.AddMember(familyID, user.ID, role, permission); err != nil {
		t.Fatalf("Failed to add member: %v", err)
	}
	return user, Actor{UserID: user.ID}
}

// createKid adds a kid to the family and returns the kid and its actor.
func (env *testEnv) createKid(t *testing.T, actor Actor, familyID int64, name string) (*models.Kid, Actor) {
	t.Helper()
	kid, _, err := env.families.CreateKid(actor, familyID, name, "blue")
	if err != nil {
		t.Fatalf("Failed to create kid: %v", err)
	}
	return kid, Actor{KidID: kid.ID}
}

// createActiveTask creates a guardian-assigned task ready to complete.
func (env *testEnv) createActiveTask(t *testing.T, actor Actor, kidID int64, title string, points int) *models.Task {
	t.Helper()
	task, err := env.tasks.CreateTask(actor, CreateTaskInput{
		KidID:      kidID,
		Title:      title,
		PointValue: points,
	})
	if err != nil {
		t.Fatalf("Failed to create task: %v", err)
	}
	return task
}
