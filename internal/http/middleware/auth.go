package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nurpe/ledger-service/internal/auth"
	"github.com/nurpe/ledger-service/internal/model"
	"github.com/nurpe/ledger-service/internal/repository"
)

const (
	ProfileHeader = "profile_id"
	profileCtxKey = "profile"
)

// ProfileLookup resolves an authenticated id to its profile.
type ProfileLookup interface {
	GetProfile(ctx context.Context, id int64) (*model.Profile, error)
}

// Auth identifies the caller by bearer token when one is sent and the parser
// is configured, otherwise by the profile_id header. Unknown profiles get 401.
func Auth(profiles ProfileLookup, parser *auth.Parser, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := identify(c, parser)
		if err != nil {
			log.Debug().Err(err).Str("path", c.Request.URL.Path).Msg("unauthenticated request")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		profile, err := profiles.GetProfile(c.Request.Context(), id)
		if err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				log.Error().Err(err).Int64("profile_id", id).Msg("load profile failed")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Set(profileCtxKey, *profile)
		c.Next()
	}
}

func identify(c *gin.Context, parser *auth.Parser) (int64, error) {
	if token := bearerToken(c); token != "" && parser.Enabled() {
		return parser.ProfileID(token)
	}
	raw := strings.TrimSpace(c.GetHeader(ProfileHeader))
	if raw == "" {
		return 0, errors.New("missing identity")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("malformed profile id")
	}
	return id, nil
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// MustProfile returns the profile stored by Auth.
func MustProfile(c *gin.Context) (model.Profile, bool) {
	value, ok := c.Get(profileCtxKey)
	if !ok {
		return model.Profile{}, false
	}
	profile, ok := value.(model.Profile)
	return profile, ok
}
