package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"golang.org/x/crypto/bcrypt"

	"matserver/config"
	"matserver/models"
)

// createTestConfig returns a config pointing at a JSON file inside a temp dir.
func createTestConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		StoreDriver:   config.DriverFile,
		DbFilePath:    filepath.Join(t.TempDir(), "test_db.json"),
		EnableBackup:  false,
		HashPasswords: true,
		BcryptCost:    bcrypt.MinCost, // Minimum cost for faster tests
	}
}

// setupTestStore returns a Store over a fresh JSON file.
func setupTestStore(t *testing.T) (*Store, *config.Config) {
	t.Helper()
	cfg := createTestConfig(t)
	repo, err := OpenRepository(cfg)
	require.NoError(t, err)
	return NewStore(repo, cfg), cfg
}

// registerUser registers email with a fixed password and fails the test on error.
func registerUser(t *testing.T, s *Store, email string) models.User {
	t.Helper()
	user, err := s.Register(context.Background(), email, "password123")
	require.NoError(t, err, "Failed to register %s", email)
	return user
}

func assertKind(t *testing.T, err error, kind error) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.Is(err, kind), "expected %v, got %v", kind, err)
}

func TestStore_Register(t *testing.T) {
	s, cfg := setupTestStore(t)
	ctx := context.Background()

	user, err := s.Register(ctx, "a@example.com", "secret")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "a@example.com", user.Email)
	assert.NotEqual(t, "secret", user.Password, "Password should be hashed")
	assert.NotNil(t, user.Tenants)
	assert.NotNil(t, user.ClientCredentials)
	assert.NotNil(t, user.FeedbackEntries)
	assert.NotNil(t, user.OnPremCredentials)
	assert.NotNil(t, user.Assessments)

	t.Run("Missing fields", func(t *testing.T) {
		_, err := s.Register(ctx, "", "secret")
		assertKind(t, err, ErrValidation)
		_, err = s.Register(ctx, "b@example.com", "")
		assertKind(t, err, ErrValidation)
	})

	t.Run("Duplicate email leaves count unchanged", func(t *testing.T) {
		_, err := s.Register(ctx, "a@example.com", "other")
		assertKind(t, err, ErrConflict)
		assert.Equal(t, "User with this email already exists", err.Error())

		n, err := s.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("Email match is case-sensitive", func(t *testing.T) {
		_, err := s.Register(ctx, "A@example.com", "secret")
		require.NoError(t, err)
	})

	t.Run("Persisted file has the documented layout", func(t *testing.T) {
		data, err := os.ReadFile(cfg.DbFilePath)
		require.NoError(t, err)
		var raw map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(data, &raw))
		assert.Contains(t, raw, "users")
		assert.Contains(t, raw, "feedback")
	})
}

func TestStore_Login(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	pairs := map[string]string{
		"one@example.com":   "p1",
		"two@example.com":   "another password",
		"three@example.com": "ünïcødé",
	}
	for email, password := range pairs {
		_, err := s.Register(ctx, email, password)
		require.NoError(t, err)
	}

	for email, password := range pairs {
		got, err := s.Login(ctx, email, password)
		require.NoError(t, err)
		assert.Equal(t, email, got)

		_, err = s.Login(ctx, email, password+"x")
		assertKind(t, err, ErrAuth)
		assert.Equal(t, "Invalid email or password", err.Error())
	}

	_, err := s.Login(ctx, "nobody@example.com", "p1")
	assertKind(t, err, ErrAuth)

	_, err = s.Login(ctx, "one@example.com", "")
	assertKind(t, err, ErrValidation)
}

func TestStore_Login_LegacyPlaintext(t *testing.T) {
	cfg := createTestConfig(t)
	cfg.HashPasswords = false
	repo := NewFileRepository(cfg.DbFilePath, false)
	s := NewStore(repo, cfg)
	ctx := context.Background()

	user, err := s.Register(ctx, "legacy@example.com", "plain")
	require.NoError(t, err)
	assert.Equal(t, "plain", user.Password)

	got, err := s.Login(ctx, "legacy@example.com", "plain")
	require.NoError(t, err)
	assert.Equal(t, "legacy@example.com", got)

	// A store that hashes new users still accepts the old plaintext record.
	cfg.HashPasswords = true
	hashing := NewStore(repo, cfg)
	_, err = hashing.Login(ctx, "legacy@example.com", "plain")
	require.NoError(t, err)
}

func TestStore_SetTenant_Replaces(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()
	registerUser(t, s, "t@example.com")

	_, err := s.SetTenant(ctx, "t@example.com", models.Tenant{TenantID: "first", ClientID: "c1"})
	require.NoError(t, err)

	hasApp := true
	user, err := s.SetTenant(ctx, "t@example.com", models.Tenant{
		TenantID:         "second",
		HasAppID:         &hasApp,
		AzureFileStorage: "storageacct",
	})
	require.NoError(t, err)
	require.Len(t, user.Tenants, 1)

	tenants, err := s.GetTenants(ctx, "t@example.com")
	require.NoError(t, err)
	require.Len(t, tenants, 1, "Setting a tenant must replace, never append")
	assert.Equal(t, "second", tenants[0].TenantID)
	assert.Empty(t, tenants[0].ClientID, "Nothing from the first tenant survives")
	assert.Equal(t, "storageacct", tenants[0].AzureFileStorage)
	require.NotNil(t, tenants[0].HasAppID)
	assert.True(t, *tenants[0].HasAppID)
	assert.NotZero(t, tenants[0].ID)

	t.Run("Validation and unknown user", func(t *testing.T) {
		_, err := s.SetTenant(ctx, "t@example.com", models.Tenant{})
		assertKind(t, err, ErrValidation)
		_, err = s.SetTenant(ctx, "", models.Tenant{TenantID: "x"})
		assertKind(t, err, ErrValidation)
		_, err = s.SetTenant(ctx, "ghost@example.com", models.Tenant{TenantID: "x"})
		assertKind(t, err, ErrNotFound)
		_, err = s.GetTenants(ctx, "ghost@example.com")
		assertKind(t, err, ErrNotFound)
	})
}

func TestStore_GetTenants_Empty(t *testing.T) {
	s, _ := setupTestStore(t)
	registerUser(t, s, "empty@example.com")

	tenants, err := s.GetTenants(context.Background(), "empty@example.com")
	require.NoError(t, err)
	assert.NotNil(t, tenants)
	assert.Empty(t, tenants)
}

func TestStore_AddClientCredential(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()
	registerUser(t, s, "c@example.com")

	user, err := s.AddClientCredential(ctx, "c@example.com", "app", "secret")
	require.NoError(t, err)
	require.Len(t, user.ClientCredentials, 1)

	_, err = s.AddClientCredential(ctx, "c@example.com", "app", "secret")
	assertKind(t, err, ErrConflict)

	// Same id with a different secret is a different credential.
	user, err = s.AddClientCredential(ctx, "c@example.com", "app", "rotated")
	require.NoError(t, err)
	assert.Len(t, user.ClientCredentials, 2)
	assert.Less(t, user.ClientCredentials[0].ID, user.ClientCredentials[1].ID)

	_, err = s.AddClientCredential(ctx, "c@example.com", "app", "")
	assertKind(t, err, ErrValidation)
	_, err = s.AddClientCredential(ctx, "ghost@example.com", "app", "secret")
	assertKind(t, err, ErrNotFound)
}

func TestStore_AddOnPremCredential(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()
	registerUser(t, s, "o@example.com")

	user, err := s.AddOnPremCredential(ctx, "o@example.com", "admin", "pw", "")
	require.NoError(t, err)
	require.Len(t, user.OnPremCredentials, 1)
	assert.Empty(t, user.OnPremCredentials[0].Domain)

	// The duplicate key ignores the domain.
	_, err = s.AddOnPremCredential(ctx, "o@example.com", "admin", "pw", "CORP")
	assertKind(t, err, ErrConflict)

	_, err = s.AddOnPremCredential(ctx, "o@example.com", "", "pw", "CORP")
	assertKind(t, err, ErrValidation)
	_, err = s.AddOnPremCredential(ctx, "ghost@example.com", "admin", "pw", "")
	assertKind(t, err, ErrNotFound)
}

func TestStore_AddFeedback(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()
	registerUser(t, s, "f@example.com")

	_, err := s.AddFeedback(ctx, "f@example.com", "Great tool")
	require.NoError(t, err)
	_, err = s.AddFeedback(ctx, "f@example.com", "Great tool")
	assertKind(t, err, ErrConflict)
	user, err := s.AddFeedback(ctx, "f@example.com", "great tool")
	require.NoError(t, err, "Duplicate detection is exact text equality")
	assert.Len(t, user.FeedbackEntries, 2)

	_, err = s.AddFeedback(ctx, "f@example.com", "")
	assertKind(t, err, ErrValidation)
}

func TestStore_AddAssessment_SkipsDuplicates(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()
	registerUser(t, s, "a@example.com")

	_, err := s.AddAssessment(ctx, "a@example.com", "OneDrive", "Usage", "Running", "2024-01-01")
	require.NoError(t, err)
	user, err := s.AddAssessment(ctx, "a@example.com", "OneDrive", "Usage", "Completed", "2024-01-02")
	require.NoError(t, err, "A duplicate is skipped, not rejected")
	require.Len(t, user.Assessments, 1)
	assert.Equal(t, "Running", user.Assessments[0].Status, "The first record is kept")

	_, err = s.AddAssessment(ctx, "a@example.com", "OneDrive", "Usage", "", "2024-01-02")
	assertKind(t, err, ErrValidation)
	_, err = s.AddAssessment(ctx, "ghost@example.com", "OneDrive", "Usage", "Running", "2024-01-01")
	assertKind(t, err, ErrNotFound)
}

func TestStore_AddAssessmentsBulk(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()
	registerUser(t, s, "bulk@example.com")

	t.Run("Identical entries in one batch store one record", func(t *testing.T) {
		batch := json.RawMessage(`[
			{"type":"A","reportName":"R1","status":"done","date":"2024-01-01"},
			{"type":"A","reportName":"R1","status":"done","date":"2024-01-01"}
		]`)
		user, err := s.AddAssessmentsBulk(ctx, "bulk@example.com", batch)
		require.NoError(t, err)
		assert.Len(t, user.Assessments, 1)
	})

	t.Run("Malformed items are skipped, extras kept, ids replaced", func(t *testing.T) {
		batch := json.RawMessage(`[
			{"type":"A","reportName":"R2","status":"done"},
			"not an object",
			{"type":"","reportName":"R3","status":"done","date":"2024-01-01"},
			{"type":"A","reportName":"R4","status":"done","date":0},
			{"type":"A","reportName":"R6","status":false,"date":"2024-01-01"},
			{"type":"A","reportName":"R7","status":null,"date":"2024-01-01"},
			{"id":42,"type":"B","reportName":"R5","status":"queued","date":"2024-02-01","jobId":"job-9","containerName":"reports"}
		]`)
		user, err := s.AddAssessmentsBulk(ctx, "bulk@example.com", batch)
		require.NoError(t, err)
		require.Len(t, user.Assessments, 2)

		added := user.Assessments[1]
		assert.Equal(t, "B", added.Type)
		assert.Equal(t, "R5", added.ReportName)
		assert.NotEqual(t, int64(42), added.ID, "Caller ids are never used")
		assert.JSONEq(t, `"job-9"`, string(added.Extra["jobId"]))
		assert.JSONEq(t, `"reports"`, string(added.Extra["containerName"]))
	})

	t.Run("Empty array succeeds", func(t *testing.T) {
		user, err := s.AddAssessmentsBulk(ctx, "bulk@example.com", json.RawMessage(`[]`))
		require.NoError(t, err)
		assert.Len(t, user.Assessments, 2)
	})

	t.Run("Non-string required fields are kept as sent", func(t *testing.T) {
		batch := json.RawMessage(`[
			{"type":"C","reportName":"R8","status":"done","date":1714560000000},
			{"type":"C","reportName":"R9","status":true,"date":"2024-05-01"}
		]`)
		user, err := s.AddAssessmentsBulk(ctx, "bulk@example.com", batch)
		require.NoError(t, err)
		require.Len(t, user.Assessments, 4)

		numeric := user.Assessments[2]
		assert.Equal(t, "R8", numeric.ReportName)
		assert.Equal(t, "1714560000000", numeric.Date)
		assert.JSONEq(t, `1714560000000`, string(numeric.Extra["date"]))

		stored, err := s.GetAssessments(ctx, "bulk@example.com")
		require.NoError(t, err)
		data, err := json.Marshal(stored[2])
		require.NoError(t, err)
		date := gjson.GetBytes(data, "date")
		assert.Equal(t, gjson.Number, date.Type, "The date stays a number on disk")
		assert.Equal(t, int64(1714560000000), date.Int())
		assert.Equal(t, "true", stored[3].Status)
		assert.JSONEq(t, `true`, string(stored[3].Extra["status"]))
	})

	t.Run("Rejections", func(t *testing.T) {
		_, err := s.AddAssessmentsBulk(ctx, "bulk@example.com", json.RawMessage(`{"type":"A"}`))
		assertKind(t, err, ErrValidation)
		_, err = s.AddAssessmentsBulk(ctx, "bulk@example.com", nil)
		assertKind(t, err, ErrValidation)
		_, err = s.AddAssessmentsBulk(ctx, "", json.RawMessage(`[]`))
		assertKind(t, err, ErrValidation)
		_, err = s.AddAssessmentsBulk(ctx, "ghost@example.com", json.RawMessage(`[]`))
		assertKind(t, err, ErrNotFound)
	})
}

func TestStore_GetAndDeleteAssessment(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()
	registerUser(t, s, "d@example.com")

	batch := json.RawMessage(`[
		{"type":"A","reportName":"R1","status":"done","date":"2024-01-01"},
		{"type":"A","reportName":"R2","status":"done","date":"2024-01-01"},
		{"type":"A","reportName":"R3","status":"done","date":"2024-01-01"}
	]`)
	user, err := s.AddAssessmentsBulk(ctx, "d@example.com", batch)
	require.NoError(t, err)
	require.Len(t, user.Assessments, 3)
	target := user.Assessments[1]
	targetID := strconv.FormatInt(target.ID, 10)

	got, err := s.GetAssessment(ctx, "d@example.com", targetID)
	require.NoError(t, err)
	assert.Equal(t, "R2", got.ReportName)

	_, err = s.GetAssessment(ctx, "d@example.com", "12345")
	assertKind(t, err, ErrNotFound)
	_, err = s.GetAssessment(ctx, "d@example.com", "abc")
	assertKind(t, err, ErrNotFound)

	t.Run("Ids are read like parseInt", func(t *testing.T) {
		for _, id := range []string{targetID + "abc", " " + targetID, "+" + targetID, targetID + ".9"} {
			got, err := s.GetAssessment(ctx, "d@example.com", id)
			require.NoError(t, err, id)
			assert.Equal(t, target.ID, got.ID)
		}
		_, err := s.GetAssessment(ctx, "d@example.com", "x"+targetID)
		assertKind(t, err, ErrNotFound)
	})
	_, err = s.GetAssessment(ctx, "ghost@example.com", targetID)
	assertKind(t, err, ErrNotFound)

	err = s.DeleteAssessment(ctx, "d@example.com", "12345")
	assertKind(t, err, ErrNotFound)
	assert.Equal(t, "Assessment not found for this user", err.Error())

	require.NoError(t, s.DeleteAssessment(ctx, "d@example.com", targetID))

	remaining, err := s.GetAssessments(ctx, "d@example.com")
	require.NoError(t, err)
	require.Len(t, remaining, 2)
	assert.Equal(t, user.Assessments[0], remaining[0])
	assert.Equal(t, user.Assessments[2], remaining[1])

	err = s.DeleteAssessment(ctx, "d@example.com", targetID)
	assertKind(t, err, ErrNotFound)
	err = s.DeleteAssessment(ctx, "ghost@example.com", targetID)
	assertKind(t, err, ErrNotFound)
}

// failingSaveRepository wraps a repository and fails every Save.
type failingSaveRepository struct {
	Repository
}

func (failingSaveRepository) Save(ctx context.Context, doc *models.Database) error {
	return errors.New("disk full")
}

func TestStore_FailedSaveKeepsPreviousState(t *testing.T) {
	s, cfg := setupTestStore(t)
	ctx := context.Background()
	registerUser(t, s, "keep@example.com")
	before, err := os.ReadFile(cfg.DbFilePath)
	require.NoError(t, err)

	broken := NewStore(failingSaveRepository{Repository: s.Repository()}, cfg)
	_, err = broken.AddFeedback(ctx, "keep@example.com", "lost")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrValidation))

	after, err := os.ReadFile(cfg.DbFilePath)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestStore_RejectedRequestDoesNotWrite(t *testing.T) {
	s, cfg := setupTestStore(t)
	ctx := context.Background()
	registerUser(t, s, "nowrite@example.com")
	info, err := os.Stat(cfg.DbFilePath)
	require.NoError(t, err)

	_, err = s.AddFeedback(ctx, "ghost@example.com", "hello")
	assertKind(t, err, ErrNotFound)

	after, err := os.Stat(cfg.DbFilePath)
	require.NoError(t, err)
	assert.Equal(t, info.ModTime(), after.ModTime())
}

func TestStore_ConcurrentWrites(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()
	const users = 4
	const perUser = 10

	for i := 0; i < users; i++ {
		registerUser(t, s, fmt.Sprintf("user%d@example.com", i))
	}

	var wg sync.WaitGroup
	for i := 0; i < users; i++ {
		for j := 0; j < perUser; j++ {
			wg.Add(1)
			go func(i, j int) {
				defer wg.Done()
				email := fmt.Sprintf("user%d@example.com", i)
				_, err := s.AddFeedback(ctx, email, fmt.Sprintf("feedback %d from %d", j, i))
				assert.NoError(t, err)
			}(i, j)
		}
	}
	wg.Wait()

	// Writes are serialized, so no update is lost, even for the same user.
	for i := 0; i < users; i++ {
		email := fmt.Sprintf("user%d@example.com", i)
		user, err := s.AddFeedback(ctx, email, "final")
		require.NoError(t, err)
		assert.Len(t, user.FeedbackEntries, perUser+1)
		for _, f := range user.FeedbackEntries {
			if f.Feedback != "final" {
				assert.Contains(t, f.Feedback, fmt.Sprintf("from %d", i), "Records must not leak between users")
			}
		}
	}
}
