package models

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/tidwall/gjson"
)

// Records written by older clients are stored the way the client sent them: a
// date may be a number, an id a string, hasAppId a string. Every record
// therefore decodes tolerantly. A known key whose value does not fit its Go
// field is kept verbatim in Extra (string fields still get its text form), and
// Extra is laid over the typed fields on encode, so such values round-trip
// unchanged and one odd record never fails the whole document.

// Database is the single persisted document. Every request loads it whole,
// mutates it and writes it back.
type Database struct {
	Users []User `json:"users"`
	// Feedback is a legacy top-level collection. No endpoint writes to it; it is
	// kept so older files round-trip unchanged.
	Feedback []json.RawMessage `json:"feedback"`
	// Extra holds top-level keys this service does not know.
	Extra map[string]json.RawMessage `json:"-"`
}

// User is an account together with all of its nested records.
type User struct {
	ID                int64                      `json:"id"`    // Creation-time derived, unique
	Email             string                     `json:"email"` // Unique, case-sensitive
	Password          string                     `json:"password,omitempty"`
	Tenants           []Tenant                   `json:"tenants"` // At most one entry
	ClientCredentials []ClientCredential         `json:"client_credentials"`
	FeedbackEntries   []FeedbackEntry            `json:"feedback"`
	OnPremCredentials []OnPremCredential         `json:"on_prem_credentials"`
	Assessments       []Assessment               `json:"assessments"`
	Extra             map[string]json.RawMessage `json:"-"`
}

// Redacted returns a copy of the user safe to send back to clients.
func (u User) Redacted() User {
	u.Password = ""
	if _, ok := u.Extra["password"]; ok {
		extra := make(map[string]json.RawMessage, len(u.Extra))
		for k, v := range u.Extra {
			if k != "password" {
				extra[k] = v
			}
		}
		u.Extra = extra
	}
	return u
}

// Tenant is the Microsoft 365 / storage configuration a user saves before
// running assessments.
type Tenant struct {
	ID                       int64                      `json:"id"`
	HasAppID                 *bool                      `json:"hasAppId,omitempty"`
	ClientID                 string                     `json:"clientId,omitempty"`
	ClientSecret             string                     `json:"clientSecret,omitempty"`
	CertificateThumbprint    string                     `json:"certificateThumbprint,omitempty"`
	GAAccount                string                     `json:"gaAccount,omitempty"`
	GAPassword               string                     `json:"gaPassword,omitempty"`
	TenantID                 string                     `json:"tenantId"`
	TenantURL                string                     `json:"tenantUrl,omitempty"`
	AzureFileStorage         string                     `json:"azureFileStorage,omitempty"` // Storage account name
	StorageAccountKey        string                     `json:"storageAccountKey,omitempty"`
	StorageAccountCredential string                     `json:"storageAccountCredential,omitempty"`
	Extra                    map[string]json.RawMessage `json:"-"`
}

// ClientCredential is an app registration secret. Unique per user on (ClientID, ClientSecret).
type ClientCredential struct {
	ID           int64                      `json:"id"`
	ClientID     string                     `json:"clientId"`
	ClientSecret string                     `json:"clientSecret"`
	Extra        map[string]json.RawMessage `json:"-"`
}

// OnPremCredential is a domain account. Unique per user on (Username, Password).
type OnPremCredential struct {
	ID       int64                      `json:"id"`
	Username string                     `json:"username"`
	Password string                     `json:"password"`
	Domain   string                     `json:"domain,omitempty"`
	Extra    map[string]json.RawMessage `json:"-"`
}

// FeedbackEntry is free text submitted by a user. Unique per user on exact text.
type FeedbackEntry struct {
	ID       int64                      `json:"id"`
	Feedback string                     `json:"feedback"`
	Extra    map[string]json.RawMessage `json:"-"`
}

// Assessment records one report run. Unique per user on (Type, ReportName).
// Fields the client sends beyond the known ones are kept in Extra and written
// back at the top level of the object.
type Assessment struct {
	ID         int64                      `json:"id"`
	Type       string                     `json:"type"`
	ReportName string                     `json:"reportName"`
	Status     string                     `json:"status"`
	Date       string                     `json:"date"`
	Extra      map[string]json.RawMessage `json:"-"`
}

// NumericID returns the assessment's id when it is stored as an integer. An id
// kept raw (a string, say) cannot be looked up by number.
func (a Assessment) NumericID() (int64, bool) {
	if _, raw := a.Extra["id"]; raw {
		return 0, false
	}
	return a.ID, true
}

// Method-free copies used to reach encoding/json's default struct encoding.
type (
	databaseFields         Database
	userFields             User
	tenantFields           Tenant
	clientCredentialFields ClientCredential
	onPremCredentialFields OnPremCredential
	feedbackEntryFields    FeedbackEntry
	assessmentFields       Assessment
)

// decodeObject decodes the scalar keys of a JSON object into fields and
// returns everything it could not place: unknown keys, nulls, and known keys
// whose value does not fit the field's type. A string field receives the text
// form of a value it cannot hold. Only a non-object is an error.
func decodeObject(data []byte, fields map[string]any) (map[string]json.RawMessage, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	for key, dst := range fields {
		v, ok := raw[key]
		if !ok || string(v) == "null" {
			continue
		}
		// Decode into a fresh value: a failed Unmarshal may have half-filled it.
		target := reflect.ValueOf(dst).Elem()
		fresh := reflect.New(target.Type())
		if err := json.Unmarshal(v, fresh.Interface()); err != nil {
			if s, isString := dst.(*string); isString {
				*s = gjson.ParseBytes(v).String()
			}
			continue
		}
		target.Set(fresh.Elem())
		delete(raw, key)
	}
	return raw, nil
}

// decodeCollections decodes the collection keys left by decodeObject. A
// collection of the wrong shape is an error: its records could not be kept.
func decodeCollections(extra map[string]json.RawMessage, collections map[string]any) error {
	for key, dst := range collections {
		v, ok := extra[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(v, dst); err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		delete(extra, key)
	}
	return nil
}

// withExtra encodes v and lays extra over it; keys in extra win.
func withExtra(v any, extra map[string]json.RawMessage) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil || len(extra) == 0 {
		return data, err
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(data, &merged); err != nil {
		return nil, err
	}
	for k, raw := range extra {
		merged[k] = raw
	}
	return json.Marshal(merged)
}

func nonEmpty(extra map[string]json.RawMessage) map[string]json.RawMessage {
	if len(extra) == 0 {
		return nil
	}
	return extra
}

func (d Database) MarshalJSON() ([]byte, error) { return withExtra(databaseFields(d), d.Extra) }

func (d *Database) UnmarshalJSON(data []byte) error {
	var decoded Database
	extra, err := decodeObject(data, nil)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := decodeCollections(extra, map[string]any{
		"users":    &decoded.Users,
		"feedback": &decoded.Feedback,
	}); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	decoded.Extra = nonEmpty(extra)
	*d = decoded
	return nil
}

func (u User) MarshalJSON() ([]byte, error) { return withExtra(userFields(u), u.Extra) }

func (u *User) UnmarshalJSON(data []byte) error {
	var decoded User
	extra, err := decodeObject(data, map[string]any{
		"id":       &decoded.ID,
		"email":    &decoded.Email,
		"password": &decoded.Password,
	})
	if err != nil {
		return fmt.Errorf("user: %w", err)
	}
	if err := decodeCollections(extra, map[string]any{
		"tenants":             &decoded.Tenants,
		"client_credentials":  &decoded.ClientCredentials,
		"feedback":            &decoded.FeedbackEntries,
		"on_prem_credentials": &decoded.OnPremCredentials,
		"assessments":         &decoded.Assessments,
	}); err != nil {
		return fmt.Errorf("user %d: %w", decoded.ID, err)
	}
	decoded.Extra = nonEmpty(extra)
	*u = decoded
	return nil
}

func (t Tenant) MarshalJSON() ([]byte, error) { return withExtra(tenantFields(t), t.Extra) }

func (t *Tenant) UnmarshalJSON(data []byte) error {
	var decoded Tenant
	extra, err := decodeObject(data, map[string]any{
		"id":                       &decoded.ID,
		"hasAppId":                 &decoded.HasAppID,
		"clientId":                 &decoded.ClientID,
		"clientSecret":             &decoded.ClientSecret,
		"certificateThumbprint":    &decoded.CertificateThumbprint,
		"gaAccount":                &decoded.GAAccount,
		"gaPassword":               &decoded.GAPassword,
		"tenantId":                 &decoded.TenantID,
		"tenantUrl":                &decoded.TenantURL,
		"azureFileStorage":         &decoded.AzureFileStorage,
		"storageAccountKey":        &decoded.StorageAccountKey,
		"storageAccountCredential": &decoded.StorageAccountCredential,
	})
	if err != nil {
		return fmt.Errorf("tenant: %w", err)
	}
	decoded.Extra = nonEmpty(extra)
	*t = decoded
	return nil
}

func (c ClientCredential) MarshalJSON() ([]byte, error) {
	return withExtra(clientCredentialFields(c), c.Extra)
}

func (c *ClientCredential) UnmarshalJSON(data []byte) error {
	var decoded ClientCredential
	extra, err := decodeObject(data, map[string]any{
		"id":           &decoded.ID,
		"clientId":     &decoded.ClientID,
		"clientSecret": &decoded.ClientSecret,
	})
	if err != nil {
		return fmt.Errorf("client credential: %w", err)
	}
	decoded.Extra = nonEmpty(extra)
	*c = decoded
	return nil
}

func (c OnPremCredential) MarshalJSON() ([]byte, error) {
	return withExtra(onPremCredentialFields(c), c.Extra)
}

func (c *OnPremCredential) UnmarshalJSON(data []byte) error {
	var decoded OnPremCredential
	extra, err := decodeObject(data, map[string]any{
		"id":       &decoded.ID,
		"username": &decoded.Username,
		"password": &decoded.Password,
		"domain":   &decoded.Domain,
	})
	if err != nil {
		return fmt.Errorf("on-prem credential: %w", err)
	}
	decoded.Extra = nonEmpty(extra)
	*c = decoded
	return nil
}

func (f FeedbackEntry) MarshalJSON() ([]byte, error) {
	return withExtra(feedbackEntryFields(f), f.Extra)
}

func (f *FeedbackEntry) UnmarshalJSON(data []byte) error {
	var decoded FeedbackEntry
	extra, err := decodeObject(data, map[string]any{
		"id":       &decoded.ID,
		"feedback": &decoded.Feedback,
	})
	if err != nil {
		return fmt.Errorf("feedback: %w", err)
	}
	decoded.Extra = nonEmpty(extra)
	*f = decoded
	return nil
}

// MarshalJSON flattens Extra next to the known fields.
func (a Assessment) MarshalJSON() ([]byte, error) {
	return withExtra(assessmentFields(a), a.Extra)
}

// UnmarshalJSON reads the known fields and keeps the rest in Extra.
func (a *Assessment) UnmarshalJSON(data []byte) error {
	var decoded Assessment
	extra, err := decodeObject(data, map[string]any{
		"id":         &decoded.ID,
		"type":       &decoded.Type,
		"reportName": &decoded.ReportName,
		"status":     &decoded.Status,
		"date":       &decoded.Date,
	})
	if err != nil {
		return fmt.Errorf("assessment: %w", err)
	}
	decoded.Extra = nonEmpty(extra)
	*a = decoded
	return nil
}
