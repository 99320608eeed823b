package rules

import "github.com/Prasanna-Nadrajan/mlreview/internal/ir"

// DefaultRegistry returns the built-in rule set for ML pipeline code.
// This is configuration, not logic: the engine iterates it generically
// and an external YAML pack can replace or extend it (see rulesdsl).
func DefaultRegistry() Registry {
	return Registry{
		"data_leakage": {
			Severity: ir.Critical,
			Patterns: []Pattern{
				{
					Expr:    `fit_transform\s*\(\s*X_test`,
					Message: "Transformer is fitted on the test set. Fit on training data and only transform the test set.",
				},
				{
					Expr:    `\.fit\s*\(\s*X\s*[,)]`,
					Message: "Model or transformer fitted on the full dataset. Split into train and test sets before fitting.",
				},
			},
		},
		"evaluation": {
			Severity: ir.Warning,
			Patterns: []Pattern{
				{
					Expr:    `predict\s*\(\s*X_train`,
					Message: "Model evaluated on training data. Report metrics on a held-out test set.",
				},
				{
					Expr:    `\.score\s*\(\s*X_train`,
					Message: "Score computed on training data overstates performance. Score on the test set.",
				},
			},
		},
		"reproducibility": {
			Severity: ir.Suggestion,
			Patterns: []Pattern{
				{
					Expr:    `np\.random\.seed\s*\(\s*\)`,
					Message: "np.random.seed() called without a seed value. Pass a fixed seed for reproducible runs.",
				},
			},
		},
		"data_handling": {
			Severity: ir.Suggestion,
			Patterns: []Pattern{
				{
					Expr:    `\.dropna\s*\(\s*\)`,
					Message: "dropna() silently removes rows. Impute missing values or record how many rows were dropped.",
				},
				{
					Expr:    `\.fillna\s*\(\s*0\s*\)`,
					Message: "fillna(0) can distort feature distributions. Consider mean, median, or model-based imputation.",
				},
			},
		},
		"pandas_practice": {
			Severity: ir.Info,
			Patterns: []Pattern{
				{
					Expr:    `\.iterrows\s*\(`,
					Message: "iterrows() is slow on large frames. Prefer vectorized operations or itertuples().",
				},
				{
					Expr:    `inplace\s*=\s*True`,
					Message: "inplace=True is discouraged in modern pandas. Assign the result instead.",
				},
			},
		},
		"feature_scaling": {
			Severity: ir.Warning,
			ScaleSensitive: map[string]string{
				"SVC":                  "Support Vector Classifier",
				"SVR":                  "Support Vector Regressor",
				"KMeans":               "K-Means Clustering",
				"KNeighborsClassifier": "K-Nearest Neighbors Classifier",
				"KNeighborsRegressor":  "K-Nearest Neighbors Regressor",
				"PCA":                  "Principal Component Analysis",
				"LogisticRegression":   "Logistic Regression",
				"Ridge":                "Ridge Regression",
				"Lasso":                "Lasso Regression",
				"MLPClassifier":        "Multi-layer Perceptron Classifier",
			},
			Scalers: []string{
				"StandardScaler",
				"MinMaxScaler",
				"RobustScaler",
				"MaxAbsScaler",
				"Normalizer",
				"QuantileTransformer",
				"PowerTransformer",
			},
		},
	}
}
