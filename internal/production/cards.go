package production

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ConceptCodes/deep-sql-research/internal/model"
	"github.com/ConceptCodes/deep-sql-research/internal/oracle"
)

// maxFallbackCardsPerScene caps fallback cards per scene.
const maxFallbackCardsPerScene = 2

type cardOutput struct {
	Cards []model.Card `json:"cards" validate:"dive"`
}

// CardDesigner places data-bound cards in scenes.
type CardDesigner struct {
	chain  *oracle.Chain[cardOutput]
	logger *slog.Logger
}

// NewCardDesigner compiles the card chain.
func NewCardDesigner(ctx context.Context, o *oracle.Oracle, logger *slog.Logger) (*CardDesigner, error) {
	chain, err := oracle.NewChain[cardOutput](ctx, o, oracle.Prompt{
		Stage:       "cards",
		System:      productionSystem,
		Template:    cardPromptTemplate,
		Funcs:       promptFuncs,
		Temperature: cardTemperature,
	})
	if err != nil {
		return nil, err
	}
	return &CardDesigner{chain: chain, logger: orDefault(logger)}, nil
}

// Design returns cards for scenes. Without insights there is nothing to bind
// and no oracle call is made.
func (d *CardDesigner) Design(ctx context.Context, scenes []model.SceneSpec, insights []model.Insight) []model.Card {
	if len(insights) == 0 {
		return []model.Card{}
	}

	out, err := d.chain.Generate(ctx, map[string]any{"Scenes": scenes, "Insights": insights})
	if err != nil {
		d.logger.Warn("card design failed, using fallback", "error", err)
		return FallbackCards(scenes)
	}

	cards := sanitizeCards(out.Cards, scenes, model.InsightIndex(insights))
	if len(cards) == 0 {
		d.logger.Warn("card design had no usable cards, using fallback")
		return FallbackCards(scenes)
	}
	d.logger.Debug("cards designed", "count", len(cards))
	return cards
}

// FallbackCards gives each scene up to two hero_stat cards bound to its first
// insights, offset diagonally.
func FallbackCards(scenes []model.SceneSpec) []model.Card {
	cards := []model.Card{}
	for _, sc := range scenes {
		n := min(len(sc.InsightIDs), maxFallbackCardsPerScene)
		for i, ref := range sc.InsightIDs[:n] {
			cards = append(cards, model.Card{
				ID:           fmt.Sprintf("card_%s_%d", sc.ID, i),
				SceneID:      sc.ID,
				Variant:      model.VariantHeroStat,
				DataRef:      ref,
				FieldMapping: defaultFieldMapping(),
				Motion: model.Motion{
					Preset:   model.MotionScalePop,
					Duration: 0.5,
					Delay:    0.2 * float64(i),
				},
				Style: model.CardStyle{
					Surface:      "glass",
					CornerRadius: 12,
					Accent:       "#3b82f6",
					Background:   "#1e293b",
					Typography:   "heading",
				},
				Position: model.Position{
					X:      10 + 5*float64(i),
					Y:      20 + 5*float64(i),
					Width:  80,
					Height: 60,
				},
				ZIndex: i + 1,
			})
		}
	}
	return cards
}

func defaultFieldMapping() map[string]string {
	return map[string]string{"title": "title", "value": "summary"}
}

func sanitizeCards(cards []model.Card, scenes []model.SceneSpec, known map[string]model.Insight) []model.Card {
	sceneIDs := make(map[string]bool, len(scenes))
	for _, sc := range scenes {
		sceneIDs[sc.ID] = true
	}

	seen := map[string]bool{}
	out := make([]model.Card, 0, len(cards))
	for _, c := range cards {
		if _, ok := known[c.DataRef]; !ok || !sceneIDs[c.SceneID] || seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		if len(c.FieldMapping) == 0 {
			c.FieldMapping = defaultFieldMapping()
		}
		out = append(out, c)
	}
	return out
}
