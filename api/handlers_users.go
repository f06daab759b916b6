package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"matserver/db"
	"matserver/models"
)

// CredentialsRequest is the body of /register and /login.
type CredentialsRequest struct {
	Email    string `json:"email" example:"alice@example.com"`
	Password string `json:"password" example:"S3cret!"`
}

// RegisterHandler creates a new user.
// @Summary      Register a User
// @Description  Creates a user with empty tenant, credential, feedback and assessment lists.
// @Description  Emails are matched exactly (case-sensitive); registering an existing email fails.
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        credentials body CredentialsRequest true "Email and password"
// @Success      201  {object}  UserResponse "User registered successfully"
// @Failure      400  {object}  utils.APIError "Missing fields or the email is already registered"
// @Failure      500  {object}  utils.InternalErrorResponse
// @Router       /register [post]
func RegisterHandler(c *gin.Context, store *db.Store) {
	var req CredentialsRequest
	if !bindBody(c, &req) {
		return
	}
	user, err := store.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	respondUser(c, "User registered successfully", user)
}

// LoginHandler checks an email/password pair.
// @Summary      Log In
// @Description  Returns the email of the matching user. Session state is kept by the client; no token is issued.
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        credentials body CredentialsRequest true "Email and password"
// @Success      200  {object}  LoginResponse
// @Failure      400  {object}  utils.APIError "Missing fields"
// @Failure      401  {object}  utils.APIError "Invalid email or password"
// @Router       /login [post]
func LoginHandler(c *gin.Context, store *db.Store) {
	var req CredentialsRequest
	if !bindBody(c, &req) {
		return
	}
	email, err := store.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, LoginResponse{Message: "Login successful", Email: email})
}

// TenantRequest carries the owning user's email and the tenant configuration.
type TenantRequest struct {
	Email                    string `json:"email" example:"alice@example.com"`
	HasAppID                 *bool  `json:"hasAppId"`
	ClientID                 string `json:"clientId"`
	ClientSecret             string `json:"clientSecret"`
	CertificateThumbprint    string `json:"certificateThumbprint"`
	GAAccount                string `json:"gaAccount"`
	GAPassword               string `json:"gaPassword"`
	TenantID                 string `json:"tenantId" example:"contoso.onmicrosoft.com"`
	TenantURL                string `json:"tenantUrl"`
	AzureFileStorage         string `json:"azureFileStorage"`
	StorageAccountKey        string `json:"storageAccountKey"`
	StorageAccountCredential string `json:"storageAccountCredential"`
}

func (r TenantRequest) tenant() models.Tenant {
	return models.Tenant{
		HasAppID:                 r.HasAppID,
		ClientID:                 r.ClientID,
		ClientSecret:             r.ClientSecret,
		CertificateThumbprint:    r.CertificateThumbprint,
		GAAccount:                r.GAAccount,
		GAPassword:               r.GAPassword,
		TenantID:                 r.TenantID,
		TenantURL:                r.TenantURL,
		AzureFileStorage:         r.AzureFileStorage,
		StorageAccountKey:        r.StorageAccountKey,
		StorageAccountCredential: r.StorageAccountCredential,
	}
}

// SetTenantHandler saves the user's tenant, replacing any previous one.
// @Summary      Save Tenant Configuration
// @Description  A user has at most one tenant: saving a tenant discards the previous one.
// @Tags         Tenants
// @Accept       json
// @Produce      json
// @Param        tenant body TenantRequest true "Tenant configuration; email and tenantId are required"
// @Success      201  {object}  UserResponse "Tenant saved successfully"
// @Failure      400  {object}  utils.APIError
// @Failure      404  {object}  utils.APIError "User not found"
// @Router       /users/tenants [post]
func SetTenantHandler(c *gin.Context, store *db.Store) {
	var req TenantRequest
	if !bindBody(c, &req) {
		return
	}
	user, err := store.SetTenant(c.Request.Context(), req.Email, req.tenant())
	if err != nil {
		respondStoreError(c, err)
		return
	}
	respondUser(c, "Tenant saved successfully", user)
}

// GetTenantsHandler lists a user's tenants.
// @Summary      Get Tenants
// @Tags         Tenants
// @Produce      json
// @Param        email path string true "User email"
// @Success      200  {object}  TenantsResponse
// @Failure      404  {object}  utils.APIError "User not found"
// @Router       /users/tenants/{email} [get]
func GetTenantsHandler(c *gin.Context, store *db.Store) {
	tenants, err := store.GetTenants(c.Request.Context(), c.Param("email"))
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, TenantsResponse{Tenants: tenants})
}

// ClientCredentialRequest is the body of /users/client-credentials.
type ClientCredentialRequest struct {
	Email        string `json:"email"`
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
}

// AddClientCredentialHandler stores an app registration secret.
// @Summary      Add Client Credentials
// @Tags         Credentials
// @Accept       json
// @Produce      json
// @Param        credential body ClientCredentialRequest true "Client id and secret"
// @Success      201  {object}  UserResponse "Credentials saved successfully"
// @Failure      400  {object}  utils.APIError "Missing fields or duplicate credentials"
// @Failure      404  {object}  utils.APIError "User not found"
// @Router       /users/client-credentials [post]
func AddClientCredentialHandler(c *gin.Context, store *db.Store) {
	var req ClientCredentialRequest
	if !bindBody(c, &req) {
		return
	}
	user, err := store.AddClientCredential(c.Request.Context(), req.Email, req.ClientID, req.ClientSecret)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	respondUser(c, "Credentials saved successfully", user)
}

// OnPremCredentialRequest is the body of /users/on-prem-credentials.
type OnPremCredentialRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	Domain   string `json:"domain"`
}

// AddOnPremCredentialHandler stores a domain account.
// @Summary      Add On-Prem Credentials
// @Tags         Credentials
// @Accept       json
// @Produce      json
// @Param        credential body OnPremCredentialRequest true "Username, password and optional domain"
// @Success      201  {object}  UserResponse "On-prem credentials saved successfully"
// @Failure      400  {object}  utils.APIError "Missing fields or duplicate credentials"
// @Failure      404  {object}  utils.APIError "User not found"
// @Router       /users/on-prem-credentials [post]
func AddOnPremCredentialHandler(c *gin.Context, store *db.Store) {
	var req OnPremCredentialRequest
	if !bindBody(c, &req) {
		return
	}
	user, err := store.AddOnPremCredential(c.Request.Context(), req.Email, req.Username, req.Password, req.Domain)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	respondUser(c, "On-prem credentials saved successfully", user)
}

// FeedbackRequest is the body of /users/feedback.
type FeedbackRequest struct {
	Email    string `json:"email"`
	Feedback string `json:"feedback"`
}

// AddFeedbackHandler stores free-text feedback.
// @Summary      Submit Feedback
// @Tags         Feedback
// @Accept       json
// @Produce      json
// @Param        feedback body FeedbackRequest true "Feedback text"
// @Success      201  {object}  UserResponse "Feedback submitted successfully"
// @Failure      400  {object}  utils.APIError "Missing fields or feedback already submitted"
// @Failure      404  {object}  utils.APIError "User not found"
// @Router       /users/feedback [post]
func AddFeedbackHandler(c *gin.Context, store *db.Store) {
	var req FeedbackRequest
	if !bindBody(c, &req) {
		return
	}
	user, err := store.AddFeedback(c.Request.Context(), req.Email, req.Feedback)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	respondUser(c, "Feedback submitted successfully", user)
}
