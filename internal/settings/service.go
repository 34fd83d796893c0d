// Package settings serves per-user host platform settings, most importantly
// the search language. Lookups are cached with a fixed TTL and de-duplicated
// so concurrent callers for one user share a single network round-trip.
package settings

import (
	"context"

	"golang.org/x/sync/singleflight"

	"address-autocomplete/internal/locale"
	"address-autocomplete/pkg/cache"
	apierr "address-autocomplete/pkg/errors"
	"address-autocomplete/pkg/logging"
	"address-autocomplete/pkg/metrics"
)

// Settings is the resolved, cache-ready view of one user.
type Settings struct {
	UserID   string `json:"userId"`
	Language string `json:"language"` // locale tag, e.g. "de-CH"
	// Warning is set when the locale id had no mapping and the default was
	// substituted. The lookup itself still succeeded.
	Warning string `json:"warning,omitempty"`
}

// Service implements the lookup. The cache is injected so hosts running
// several widget instances can decide whether to share one.
type Service struct {
	client     HostClient
	cache      *cache.Cache[string, Settings]
	locales    *locale.Table
	designMode bool
	sf         singleflight.Group
	log        *logging.ComponentLogger

	mFetches *metrics.Counter
	mShared  *metrics.Counter
}

func NewService(client HostClient, c *cache.Cache[string, Settings], locales *locale.Table, designMode bool, log *logging.Logger, reg *metrics.Registry) *Service {
	s := &Service{client: client, cache: c, locales: locales, designMode: designMode}
	if log != nil {
		s.log = log.WithComponent("settings")
	}
	if reg != nil {
		s.mFetches = reg.Counter("settings_fetches_total", "User settings fetches that hit the network")
		s.mShared = reg.Counter("settings_shared_total", "User settings calls served by an in-flight fetch")
	}
	return s
}

// designModeSettings is returned without any network access when the widget
// runs on a design/preview surface.
var designModeSettings = Settings{UserID: "design-mode", Language: locale.DefaultTag}

// UserSettings resolves the settings for userID. Fetch failures propagate as
// typed host API errors; the caller must distinguish "no data" from "fetch
// broke".
func (s *Service) UserSettings(ctx context.Context, userID string) (Settings, error) {
	if s.designMode {
		return designModeSettings, nil
	}

	if st, ok := s.cache.Get(userID); ok {
		return st, nil
	}

	v, err, shared := s.sf.Do(userID, func() (any, error) {
		return s.fetch(ctx, userID)
	})
	if shared && s.mShared != nil {
		s.mShared.Inc(1)
	}
	if err != nil {
		return Settings{}, err
	}
	return v.(Settings), nil
}

func (s *Service) fetch(ctx context.Context, userID string) (Settings, error) {
	if s.mFetches != nil {
		s.mFetches.Inc(1)
	}
	rec, err := s.client.RetrieveUser(ctx, userID)
	if err != nil {
		if ae, ok := apierr.AsAPIError(err); ok {
			return Settings{}, ae
		}
		return Settings{}, apierr.NewHostAPI(apierr.CodeUnknown, 0, subsystemTag, err.Error(), err)
	}

	tag, warning := s.locales.Resolve(rec.UILocaleID)
	st := Settings{UserID: userID, Language: tag, Warning: warning}
	if warning != "" && s.log != nil {
		s.log.Warn("locale fallback", logging.String("user_id", userID), logging.Int("locale_id", rec.UILocaleID))
	}
	s.cache.Put(userID, st)
	return st, nil
}
