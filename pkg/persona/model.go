package persona

// Model is a selectable completion model.
type Model struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

const (
	ModelFast  = "llama-3.1-8b-instant"
	ModelSmart = "deepseek-r1-distill-llama-70b"
)

var models = []Model{
	{ID: ModelFast, Name: "Fast Mode", Description: "Quick responses for casual conversation"},
	{ID: ModelSmart, Name: "Smart Mode", Description: "Slower, more detailed reasoning"},
}

func Models() []Model {
	out := make([]Model, len(models))
	copy(out, models)
	return out
}

// ResolveModel returns id when it is a known model, otherwise fallback.
// An unknown fallback resolves to ModelFast.
func ResolveModel(id, fallback string) string {
	for _, m := range models {
		if m.ID == id {
			return id
		}
	}
	for _, m := range models {
		if m.ID == fallback {
			return fallback
		}
	}
	return ModelFast
}
