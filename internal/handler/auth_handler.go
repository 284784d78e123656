package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"scholarchat/internal/auth"
	"scholarchat/internal/config"
	apperrors "scholarchat/internal/errors"
	"scholarchat/internal/model"
	"scholarchat/internal/service"
	"scholarchat/internal/session"
)

// AuthHandler handles signup, verification, intake, login, and logout.
type AuthHandler struct {
	signupService service.SignupService
	sessions      session.Store
	jwtService    *auth.JWTService
	otpDelivery   string
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(signupService service.SignupService, sessions session.Store, jwtService *auth.JWTService, otpDelivery string) *AuthHandler {
	return &AuthHandler{
		signupService: signupService,
		sessions:      sessions,
		jwtService:    jwtService,
		otpDelivery:   otpDelivery,
	}
}

// SignupRequest starts the signup flow.
type SignupRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required,min=6"`
}

// VerifyRequest redeems a verification code.
type VerifyRequest struct {
	OTP string `json:"otp" form:"otp" validate:"required"`
}

// DetailsRequest is the profile intake form.
type DetailsRequest struct {
	Name             string `json:"name" form:"name" validate:"required"`
	Gender           string `json:"gender" form:"gender" validate:"required"`
	DOB              string `json:"dob" form:"dob" validate:"required"`
	TotalIncome      string `json:"total_income" form:"total_income" validate:"required"`
	Caste            string `json:"caste" form:"caste" validate:"required"`
	FatherOccupation string `json:"father_occupation" form:"father_occupation" validate:"required"`
	MotherOccupation string `json:"mother_occupation" form:"mother_occupation" validate:"required"`
}

// LoginRequest authenticates an existing student.
type LoginRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

// FlowResponse carries a user-visible message and the next step of the flow.
type FlowResponse struct {
	Message string `json:"message"`
	Next    string `json:"next,omitempty"`
	Code    string `json:"code,omitempty"` // only in OTP response-delivery mode
}

// SignupPage godoc
// @Summary Describe the signup form
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *AuthHandler) SignupPage(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"form":   "signup",
		"fields": []string{"email", "password"},
	})
}

// Signup godoc
// @Summary Start signup and issue a verification code
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SignupRequest true "Signup data"
// @Success 200 {object} FlowResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Router / [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "email & password required")
	}

	code, emailed, err := h.signupService.BeginSignup(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		httpErr := apperrors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	sess := model.NewSession(model.StagePendingOTP, req.Email)
	if err := h.beginSession(c, sess); err != nil {
		return err
	}

	resp := FlowResponse{
		Message: "OTP sent! Check your email.",
		Next:    "/verify",
	}
	if !emailed && h.otpDelivery == config.OTPDeliveryResponse {
		resp.Message = "OTP issued."
		resp.Code = code
	}
	return c.JSON(http.StatusOK, resp)
}

// VerifyPage godoc
// @Summary Describe the verification form
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} errors.ErrorResponse
// @Router /verify [get]
func (h *AuthHandler) VerifyPage(c echo.Context) error {
	sess, err := requireStage(c, model.StagePendingOTP)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"form":   "verify",
		"fields": []string{"otp"},
		"email":  sess.Email,
	})
}

// Verify godoc
// @Summary Redeem the emailed verification code
// @Tags auth
// @Accept json
// @Produce json
// @Param request body VerifyRequest true "Verification code"
// @Success 200 {object} FlowResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 410 {object} errors.ErrorResponse
// @Router /verify [post]
func (h *AuthHandler) Verify(c echo.Context) error {
	sess, err := requireStage(c, model.StagePendingOTP)
	if err != nil {
		return err
	}

	var req VerifyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "otp required")
	}

	passwordHash, err := h.signupService.VerifyCode(c.Request().Context(), sess.Email, req.OTP)
	if err != nil {
		httpErr := apperrors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	sess.Stage = model.StageVerified
	sess.PendingPasswordHash = passwordHash
	if err := h.sessions.Save(c.Request().Context(), sess); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, FlowResponse{
		Message: "Email verified.",
		Next:    "/details",
	})
}

// DetailsPage godoc
// @Summary Describe the profile intake form
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} errors.ErrorResponse
// @Router /details [get]
func (h *AuthHandler) DetailsPage(c echo.Context) error {
	sess, err := requireStage(c, model.StageVerified)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"form":   "details",
		"fields": []string{"name", "gender", "dob", "total_income", "caste", "father_occupation", "mother_occupation"},
		"email":  sess.Email,
	})
}

// Details godoc
// @Summary Submit the student profile and finish signup
// @Tags auth
// @Accept json
// @Produce json
// @Param request body DetailsRequest true "Profile data"
// @Success 200 {object} FlowResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /details [post]
func (h *AuthHandler) Details(c echo.Context) error {
	sess, err := requireStage(c, model.StageVerified)
	if err != nil {
		return err
	}

	var req DetailsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "all profile fields are required")
	}

	student, err := h.signupService.CompleteProfile(c.Request().Context(), sess.Email, sess.PendingPasswordHash, service.ProfileInput{
		Name:             req.Name,
		Gender:           req.Gender,
		DOB:              req.DOB,
		TotalIncome:      req.TotalIncome,
		Caste:            req.Caste,
		FatherOccupation: req.FatherOccupation,
		MotherOccupation: req.MotherOccupation,
	})
	if err != nil {
		httpErr := apperrors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	sess.Stage = model.StageAuthenticated
	sess.Name = student.Name
	sess.PendingPasswordHash = ""
	if err := h.sessions.Save(c.Request().Context(), sess); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, FlowResponse{
		Message: "Profile saved. Welcome, " + student.Name + "!",
		Next:    "/chat",
	})
}

// LoginPage godoc
// @Summary Describe the login form
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /login [get]
func (h *AuthHandler) LoginPage(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"form":   "login",
		"fields": []string{"email", "password"},
	})
}

// Login godoc
// @Summary Login an existing student
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} FlowResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "email & password required")
	}

	student, err := h.signupService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		httpErr := apperrors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	sess := model.NewSession(model.StageAuthenticated, student.Email)
	sess.Name = student.Name
	if err := h.beginSession(c, sess); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, FlowResponse{
		Message: "Logged in.",
		Next:    "/chat",
	})
}

// Logout godoc
// @Summary Logout and clear the session
// @Tags auth
// @Produce json
// @Success 200 {object} FlowResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /logout [get]
func (h *AuthHandler) Logout(c echo.Context) error {
	sess, ok := auth.SessionFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "no session")
	}
	if err := h.sessions.Delete(c.Request().Context(), sess.ID); err != nil {
		return err
	}
	c.SetCookie(auth.ExpiredSessionCookie())

	return c.JSON(http.StatusOK, FlowResponse{
		Message: "You have been logged out successfully.",
		Next:    "/login",
	})
}

// beginSession persists a fresh session and sets its cookie.
func (h *AuthHandler) beginSession(c echo.Context, sess *model.Session) error {
	if err := h.sessions.Save(c.Request().Context(), sess); err != nil {
		return err
	}
	token, err := h.jwtService.GenerateSessionToken(sess.ID)
	if err != nil {
		return err
	}
	c.SetCookie(auth.NewSessionCookie(token))
	return nil
}

// requireStage loads the session from the context and checks the flow stage.
// A wrong stage points the client back to the start of the flow.
func requireStage(c echo.Context, stage model.Stage) (*model.Session, error) {
	sess, ok := auth.SessionFromContext(c)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, echo.Map{"error": "login required", "next": "/"})
	}
	if sess.Stage != stage {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, echo.Map{"error": "not allowed at this step", "next": "/"})
	}
	return sess, nil
}
