package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"taskhub/internal/services/auth"
)

// WelcomeEmail handles the post-registration welcome job. Actual mail
// delivery is left to the deployment; this stub records the intent so the
// queue path is exercised end to end.
func WelcomeEmail(ctx context.Context, payload []byte) error {
	var p auth.WelcomePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("bad welcome payload: %w", err)
	}
	log.Info().Int64("user_id", p.UserID).Str("email", p.Email).Msg("jobs: welcome email dispatched")
	return nil
}
