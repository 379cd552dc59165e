package middleware

import (
	"fmt"
	"regexp"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/optorecord-api/internal/handler"
	apperrors "github.com/jwalitptl/optorecord-api/pkg/errors"
)

const (
	HeaderAPIVersion  = "X-API-Version"
	ContextAPIVersion = "api_version"
)

type VersionConfig struct {
	HeaderName     string
	DefaultVersion string
	Supported      []string
}

func DefaultVersionConfig() VersionConfig {
	return VersionConfig{
		HeaderName:     "Accept-Version",
		DefaultVersion: "1.0",
		Supported:      []string{"1.0"},
	}
}

var versionPattern = regexp.MustCompile(`^\d+\.\d+$`)

// Version negotiates the optional Accept-Version header and echoes the
// served version back.
func Version(config VersionConfig) gin.HandlerFunc {
	supported := make(map[string]struct{}, len(config.Supported))
	for _, v := range config.Supported {
		supported[v] = struct{}{}
	}

	return func(c *gin.Context) {
		requested := c.GetHeader(config.HeaderName)
		if requested == "" {
			requested = config.DefaultVersion
		}

		if !versionPattern.MatchString(requested) {
			handler.RespondError(c, apperrors.BadRequest("Invalid version format. Use: major.minor"))
			return
		}
		if _, ok := supported[requested]; !ok {
			handler.RespondError(c, apperrors.BadRequest(fmt.Sprintf("API version %s not supported", requested)))
			return
		}

		c.Set(ContextAPIVersion, requested)
		c.Header(HeaderAPIVersion, requested)
		c.Next()
	}
}
