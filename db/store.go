package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/tidwall/gjson"

	"matserver/config"
	"matserver/models"
	"matserver/utils"
)

var storeOperations = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "matserver_store_operations_total",
	Help: "Record store operations by operation and outcome.",
}, []string{"op", "result"})

// Store implements every record operation as a read-modify-write of the whole
// document. A single mutex serializes operations so two requests can never
// interleave their load and save.
type Store struct {
	repo          Repository
	ids           *IDGenerator
	mu            sync.Mutex
	hashPasswords bool
	bcryptCost    int
}

// NewStore returns a Store over repo.
func NewStore(repo Repository, cfg *config.Config) *Store {
	return &Store{
		repo:          repo,
		ids:           NewIDGenerator(),
		hashPasswords: cfg.HashPasswords,
		bcryptCost:    cfg.BcryptCost,
	}
}

// Repository exposes the backing repository (readiness checks, shutdown).
func (s *Store) Repository() Repository { return s.repo }

// view runs fn over a freshly loaded document without saving it.
func (s *Store) view(ctx context.Context, op string, fn func(doc *models.Database) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.repo.Load(ctx)
	if err != nil {
		record(op, err)
		return err
	}
	normalizeDocument(doc)
	err = fn(doc)
	record(op, err)
	return err
}

// update runs fn over a freshly loaded document and saves it only if fn succeeds.
func (s *Store) update(ctx context.Context, op string, fn func(doc *models.Database) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.repo.Load(ctx)
	if err != nil {
		record(op, err)
		return err
	}
	normalizeDocument(doc)
	if err := fn(doc); err != nil {
		record(op, err)
		return err
	}
	if err := s.repo.Save(ctx, doc); err != nil {
		record(op, err)
		return err
	}
	record(op, nil)
	return nil
}

func record(op string, err error) {
	result := "ok"
	var storeErr *Error
	switch {
	case err == nil:
	case errors.As(err, &storeErr):
		result = "rejected"
	default:
		result = "error"
	}
	storeOperations.WithLabelValues(op, result).Inc()
}

// findUser returns a pointer into doc.Users so callers can mutate in place.
func findUser(doc *models.Database, email string) *models.User {
	for i := range doc.Users {
		if doc.Users[i].Email == email {
			return &doc.Users[i]
		}
	}
	return nil
}

func userNotFound() error { return notFoundError("User not found") }

// Register creates a user with empty nested collections.
func (s *Store) Register(ctx context.Context, email, password string) (models.User, error) {
	if email == "" || password == "" {
		return models.User{}, validationError("Email and password are required")
	}

	stored := password
	if s.hashPasswords {
		hash, err := utils.HashPassword(password, s.bcryptCost)
		if err != nil {
			return models.User{}, err
		}
		stored = hash
	}

	var created models.User
	err := s.update(ctx, "register", func(doc *models.Database) error {
		if findUser(doc, email) != nil {
			return conflictError("User with this email already exists")
		}
		created = models.User{
			ID:                s.ids.Next(),
			Email:             email,
			Password:          stored,
			Tenants:           []models.Tenant{},
			ClientCredentials: []models.ClientCredential{},
			FeedbackEntries:   []models.FeedbackEntry{},
			OnPremCredentials: []models.OnPremCredential{},
			Assessments:       []models.Assessment{},
		}
		doc.Users = append(doc.Users, created)
		return nil
	})
	if err != nil {
		return models.User{}, err
	}
	log.Printf("INFO: Registered user ID: %d", created.ID)
	return created, nil
}

// Login returns the email of the user whose email and password both match.
// The error never says which of the two was wrong.
func (s *Store) Login(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", validationError("Email and password are required")
	}
	var matched string
	err := s.view(ctx, "login", func(doc *models.Database) error {
		user := findUser(doc, email)
		if user == nil || !utils.CheckPassword(password, user.Password) {
			return authError("Invalid email or password")
		}
		matched = user.Email
		return nil
	})
	return matched, err
}

// SetTenant replaces the user's tenant list with the single given tenant.
func (s *Store) SetTenant(ctx context.Context, email string, tenant models.Tenant) (models.User, error) {
	if email == "" || tenant.TenantID == "" {
		return models.User{}, validationError("Email and Tenant ID are required")
	}
	var updated models.User
	err := s.update(ctx, "set_tenant", func(doc *models.Database) error {
		user := findUser(doc, email)
		if user == nil {
			return userNotFound()
		}
		tenant.ID = s.ids.Next()
		user.Tenants = []models.Tenant{tenant}
		updated = *user
		return nil
	})
	return updated, err
}

// GetTenants returns the user's tenants, possibly empty.
func (s *Store) GetTenants(ctx context.Context, email string) ([]models.Tenant, error) {
	var tenants []models.Tenant
	err := s.view(ctx, "get_tenants", func(doc *models.Database) error {
		user := findUser(doc, email)
		if user == nil {
			return userNotFound()
		}
		tenants = user.Tenants
		return nil
	})
	return tenants, err
}

// AddClientCredential appends a client credential unless the same
// (clientId, clientSecret) pair is already stored.
func (s *Store) AddClientCredential(ctx context.Context, email, clientID, clientSecret string) (models.User, error) {
	if email == "" || clientID == "" || clientSecret == "" {
		return models.User{}, validationError("Email, Client ID, and Client Secret are required")
	}
	var updated models.User
	err := s.update(ctx, "add_client_credential", func(doc *models.Database) error {
		user := findUser(doc, email)
		if user == nil {
			return userNotFound()
		}
		for _, c := range user.ClientCredentials {
			if c.ClientID == clientID && c.ClientSecret == clientSecret {
				return conflictError("These credentials already exist for this user")
			}
		}
		user.ClientCredentials = append(user.ClientCredentials, models.ClientCredential{
			ID:           s.ids.Next(),
			ClientID:     clientID,
			ClientSecret: clientSecret,
		})
		updated = *user
		return nil
	})
	return updated, err
}

// AddOnPremCredential appends an on-prem credential unless the same
// (username, password) pair is already stored. Domain is optional.
func (s *Store) AddOnPremCredential(ctx context.Context, email, username, password, domain string) (models.User, error) {
	if email == "" || username == "" || password == "" {
		return models.User{}, validationError("Email, username, and password are required")
	}
	var updated models.User
	err := s.update(ctx, "add_on_prem_credential", func(doc *models.Database) error {
		user := findUser(doc, email)
		if user == nil {
			return userNotFound()
		}
		for _, c := range user.OnPremCredentials {
			if c.Username == username && c.Password == password {
				return conflictError("These on-prem credentials already exist for this user")
			}
		}
		user.OnPremCredentials = append(user.OnPremCredentials, models.OnPremCredential{
			ID:       s.ids.Next(),
			Username: username,
			Password: password,
			Domain:   domain,
		})
		updated = *user
		return nil
	})
	return updated, err
}

// AddFeedback appends feedback text unless identical text was already submitted.
func (s *Store) AddFeedback(ctx context.Context, email, feedback string) (models.User, error) {
	if email == "" || feedback == "" {
		return models.User{}, validationError("Email and feedback content are required")
	}
	var updated models.User
	err := s.update(ctx, "add_feedback", func(doc *models.Database) error {
		user := findUser(doc, email)
		if user == nil {
			return userNotFound()
		}
		for _, f := range user.FeedbackEntries {
			if f.Feedback == feedback {
				return conflictError("This feedback has already been submitted")
			}
		}
		user.FeedbackEntries = append(user.FeedbackEntries, models.FeedbackEntry{
			ID:       s.ids.Next(),
			Feedback: feedback,
		})
		updated = *user
		return nil
	})
	return updated, err
}

func hasAssessment(user *models.User, assessmentType, reportName string) bool {
	for _, a := range user.Assessments {
		if a.Type == assessmentType && a.ReportName == reportName {
			return true
		}
	}
	return false
}

// AddAssessment stores an assessment. An existing (type, reportName) pair is
// left as is and the call still succeeds.
func (s *Store) AddAssessment(ctx context.Context, email, assessmentType, reportName, status, date string) (models.User, error) {
	if email == "" || assessmentType == "" || reportName == "" || status == "" || date == "" {
		return models.User{}, validationError("Email, type, report name, status, and date are required")
	}
	var updated models.User
	err := s.update(ctx, "add_assessment", func(doc *models.Database) error {
		user := findUser(doc, email)
		if user == nil {
			return userNotFound()
		}
		if !hasAssessment(user, assessmentType, reportName) {
			user.Assessments = append(user.Assessments, models.Assessment{
				ID:         s.ids.Next(),
				Type:       assessmentType,
				ReportName: reportName,
				Status:     status,
				Date:       date,
			})
		}
		updated = *user
		return nil
	})
	return updated, err
}

// requiredAssessmentFields must all be present and truthy for a bulk item to be stored.
var requiredAssessmentFields = []string{"type", "reportName", "status", "date"}

// truthy follows JavaScript truthiness: false, null, 0 and "" are falsy,
// objects and arrays are not.
func truthy(v gjson.Result) bool {
	switch v.Type {
	case gjson.String:
		return v.Str != ""
	case gjson.Number:
		return v.Num != 0
	case gjson.True, gjson.JSON:
		return true
	}
	return false
}

// validBulkItem reports whether raw is an object carrying every required field.
func validBulkItem(raw gjson.Result) bool {
	if !raw.IsObject() {
		return false
	}
	for _, field := range requiredAssessmentFields {
		if !truthy(raw.Get(field)) {
			return false
		}
	}
	return true
}

// assessmentFromResult copies a validated bulk item. Unknown keys go to Extra
// untouched, as do required fields that are not strings (a numeric date, say);
// those also fill the typed field with their text form. The id is dropped.
func assessmentFromResult(item gjson.Result) models.Assessment {
	var a models.Assessment
	typed := map[string]*string{
		"type":       &a.Type,
		"reportName": &a.ReportName,
		"status":     &a.Status,
		"date":       &a.Date,
	}
	item.ForEach(func(key, value gjson.Result) bool {
		if key.Str == "id" {
			return true
		}
		if dst, ok := typed[key.Str]; ok {
			*dst = value.String()
			if value.Type == gjson.String {
				return true
			}
		}
		if a.Extra == nil {
			a.Extra = make(map[string]json.RawMessage)
		}
		a.Extra[key.Str] = json.RawMessage(value.Raw)
		return true
	})
	return a
}

// AddAssessmentsBulk stores every well-formed, non-duplicate item of the JSON
// array in assessments. Malformed items and duplicates (including duplicates
// within the batch) are skipped without failing the call. Extra fields on an
// item are kept; a caller-supplied id is replaced.
func (s *Store) AddAssessmentsBulk(ctx context.Context, email string, assessments json.RawMessage) (models.User, error) {
	parsed := gjson.ParseBytes(assessments)
	if email == "" || len(assessments) == 0 || !parsed.IsArray() {
		return models.User{}, validationError("Email and assessments array are required")
	}
	var updated models.User
	err := s.update(ctx, "add_assessments_bulk", func(doc *models.Database) error {
		user := findUser(doc, email)
		if user == nil {
			return userNotFound()
		}
		added, skipped := 0, 0
		for _, item := range parsed.Array() {
			if !validBulkItem(item) {
				log.Printf("WARN: Skipping invalid assessment object for user %d", user.ID)
				skipped++
				continue
			}
			a := assessmentFromResult(item)
			if hasAssessment(user, a.Type, a.ReportName) {
				skipped++
				continue
			}
			a.ID = s.ids.Next()
			user.Assessments = append(user.Assessments, a)
			added++
		}
		log.Printf("INFO: Bulk assessments for user %d: %d added, %d skipped", user.ID, added, skipped)
		updated = *user
		return nil
	})
	return updated, err
}

// GetAssessments returns the user's assessments, possibly empty.
func (s *Store) GetAssessments(ctx context.Context, email string) ([]models.Assessment, error) {
	var assessments []models.Assessment
	err := s.view(ctx, "get_assessments", func(doc *models.Database) error {
		user := findUser(doc, email)
		if user == nil {
			return userNotFound()
		}
		assessments = user.Assessments
		return nil
	})
	return assessments, err
}

// parseAssessmentID reads a path id the way JavaScript's parseInt does: leading
// spaces, an optional sign and a "0x" prefix are accepted, and trailing
// non-digits are ignored, so "123abc" is 123. An id with no leading digits
// cannot match any assessment.
func parseAssessmentID(id string, notFoundMsg string) (int64, error) {
	s := strings.TrimLeft(id, " \t\n\r\v\f")
	sign := ""
	if s != "" && (s[0] == '-' || s[0] == '+') {
		sign, s = s[:1], s[1:]
	}
	base, isDigit := 10, func(c byte) bool { return c >= '0' && c <= '9' }
	if len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		base, s = 16, s[2:]
		isDigit = func(c byte) bool {
			return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
		}
	}
	end := 0
	for end < len(s) && isDigit(s[end]) {
		end++
	}
	n, err := strconv.ParseInt(sign+s[:end], base, 64)
	if err != nil {
		return 0, notFoundError(notFoundMsg)
	}
	return n, nil
}

// GetAssessment returns one assessment by id.
func (s *Store) GetAssessment(ctx context.Context, email, id string) (models.Assessment, error) {
	var found models.Assessment
	err := s.view(ctx, "get_assessment", func(doc *models.Database) error {
		user := findUser(doc, email)
		if user == nil {
			return userNotFound()
		}
		n, err := parseAssessmentID(id, "Assessment not found")
		if err != nil {
			return err
		}
		for _, a := range user.Assessments {
			if aid, ok := a.NumericID(); ok && aid == n {
				found = a
				return nil
			}
		}
		return notFoundError("Assessment not found")
	})
	return found, err
}

// DeleteAssessment removes the assessment with the given id. It is an error if
// nothing was removed.
func (s *Store) DeleteAssessment(ctx context.Context, email, id string) error {
	return s.update(ctx, "delete_assessment", func(doc *models.Database) error {
		user := findUser(doc, email)
		if user == nil {
			return userNotFound()
		}
		const missing = "Assessment not found for this user"
		n, err := parseAssessmentID(id, missing)
		if err != nil {
			return err
		}
		kept := make([]models.Assessment, 0, len(user.Assessments))
		for _, a := range user.Assessments {
			if aid, ok := a.NumericID(); !ok || aid != n {
				kept = append(kept, a)
			}
		}
		if len(kept) == len(user.Assessments) {
			return notFoundError(missing)
		}
		user.Assessments = kept
		log.Printf("INFO: Deleted assessment %d for user %d", n, user.ID)
		return nil
	})
}

// Count returns the number of users. Used by the CLI and tests.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.view(ctx, "count", func(doc *models.Database) error {
		n = len(doc.Users)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}
