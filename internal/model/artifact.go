package model

// ModelArtifact is a fitted regression model. It is never mutated after
// fitting; a retrain produces a new artifact.
type ModelArtifact struct {
	Name      string    `json:"name"`
	Intercept float64   `json:"intercept"`
	Coef      []float64 `json:"coef"`
	Columns   []string  `json:"columns"`
	Lambda    float64   `json:"lambda,omitempty"`
}

// Coefficient is one row of the OLS significance table.
type Coefficient struct {
	Column string  `json:"column"`
	Value  float64 `json:"value"`
	StdErr float64 `json:"std_err"`
	TStat  float64 `json:"t_stat"`
	PValue float64 `json:"p_value"`
}

// Score holds held-out evaluation metrics for one model.
type Score struct {
	Model  string  `json:"model"`
	R2     float64 `json:"r2"`
	RMSE   float64 `json:"rmse"`
	Lambda float64 `json:"lambda,omitempty"`
}
