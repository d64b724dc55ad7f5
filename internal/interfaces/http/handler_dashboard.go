package http

import (
	"embed"
	"html/template"
	"net/http"
	"time"

	"regbot/internal/entities"
	"regbot/internal/usecases"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/skip2/go-qrcode"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// LoadTemplates parses the embedded dashboard pages.
func LoadTemplates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"datetime": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Local().Format("2006-01-02 15:04")
		},
	}).ParseFS(templateFS, "templates/*.tmpl")
}

type DashboardHandler struct {
	dashboard *usecases.DashboardUsecase
	botLink   string
	log       zerolog.Logger
}

// NewDashboardHandler builds the UI handler. botLink may be empty when the bot username is unknown.
func NewDashboardHandler(dashboard *usecases.DashboardUsecase, botLink string, log zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboard: dashboard,
		botLink:   botLink,
		log:       log.With().Str("component", "dashboard").Logger(),
	}
}

// Login renders the sign-in stub. Submitting goes straight to the dashboard.
func (h *DashboardHandler) Login(c *gin.Context) {
	c.HTML(http.StatusOK, "login.tmpl", gin.H{})
}

// Dashboard renders the users table or the broadcast form.
func (h *DashboardHandler) Dashboard(c *gin.Context) {
	batch, selected := DashboardBatch(c.Query("batch"))
	view := c.Query("view")
	if view != "broadcast" {
		view = "users"
	}

	data := gin.H{
		"Batch":        selected,
		"View":         view,
		"BotLink":      h.botLink,
		"FeedbackOpen": h.dashboard.FeedbackOpen(),
	}

	counts, err := h.dashboard.Counts(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("count users failed")
		data["Error"] = "Failed to fetch users"
	}
	data["Counts"] = counts

	if view == "users" && err == nil {
		users, err := h.dashboard.ListUsers(c.Request.Context(), entities.UserFilter{Batch: batch})
		if err != nil {
			h.log.Error().Err(err).Msg("list users failed")
			data["Error"] = "Failed to fetch users"
		}
		data["Users"] = users
	}

	c.HTML(http.StatusOK, "dashboard.tmpl", data)
}

// BotQR serves a PNG QR code linking to the bot.
func (h *DashboardHandler) BotQR(c *gin.Context) {
	if h.botLink == "" {
		c.String(http.StatusServiceUnavailable, "Bot link not available")
		return
	}

	png, err := qrcode.Encode(h.botLink, qrcode.Medium, 256)
	if err != nil {
		h.log.Error().Err(err).Msg("qr encode failed")
		c.String(http.StatusInternalServerError, "Failed to generate QR code")
		return
	}

	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, "image/png", png)
}
