package replay

import (
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
	"slices"

	"github.com/google/go-cmp/cmp"

	"github.com/okian/dugout/internal/domain/engine"
	"github.com/okian/dugout/internal/domain/model"
	"github.com/okian/dugout/internal/domain/types"
)

var ( //nolint:gochecknoglobals // expected wire shapes
	planKeys      = []string{"catcherPlan", "defensiveAlignment", "keyPoints", "offensiveSigns", "pitchCall"}
	alignmentKeys = []string{"battery", "infield", "outfield"}
	signKeys      = []string{"hitter", "runner"}
)

// verify checks one response body against the local engine. saved reports
// whether the server was asked to record the plan.
func verify(s model.GameSituation, status int, body []byte, saved bool) error {
	if status != http.StatusOK {
		return fmt.Errorf("status %d: %s", status, body)
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	want := planKeys
	if saved {
		want = append(slices.Clone(planKeys), "historyId")
		slices.Sort(want)
	}
	if err := keySet("response", top, want); err != nil {
		return err
	}
	if err := nestedKeySet("defensiveAlignment", top["defensiveAlignment"], alignmentKeys); err != nil {
		return err
	}
	if err := nestedKeySet("offensiveSigns", top["offensiveSigns"], signKeys); err != nil {
		return err
	}

	var got types.RecommendationResponse
	if err := json.Unmarshal(body, &got); err != nil {
		return fmt.Errorf("decode plan: %w", err)
	}
	if saved && got.HistoryID == "" {
		return fmt.Errorf("historyId is empty")
	}
	if dup, ok := firstDuplicate(got.KeyPoints); ok {
		return fmt.Errorf("duplicate key point %q", dup)
	}
	if diff := cmp.Diff(engine.Generate(s), got.StrategyPlan); diff != "" {
		return fmt.Errorf("plan differs from local engine (-want +got):\n%s", diff)
	}
	return nil
}

func nestedKeySet(name string, raw json.RawMessage, want []string) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return keySet(name, m, want)
}

func keySet(name string, m map[string]json.RawMessage, want []string) error {
	got := slices.Sorted(maps.Keys(m))
	if !slices.Equal(got, want) {
		return fmt.Errorf("%s keys %v, want %v", name, got, want)
	}
	return nil
}

func firstDuplicate(points []string) (string, bool) {
	seen := make(map[string]struct{}, len(points))
	for _, p := range points {
		if _, ok := seen[p]; ok {
			return p, true
		}
		seen[p] = struct{}{}
	}
	return "", false
}
