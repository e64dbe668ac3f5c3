package domain

// ModelKind identifies one of the fixed analysis procedures run by the
// model engine. The values double as plot type tags on the wire.
type ModelKind string

const (
	ModelSVM          ModelKind = "svm_classification"
	ModelRandomForest ModelKind = "random_forest"
	ModelHierarchical ModelKind = "hierarchical_clustering"
	ModelKMeans       ModelKind = "kmeans_clustering"
	ModelLasso        ModelKind = "lasso"
	ModelRidge        ModelKind = "ridge"
)

// ModelResult is the closed set of outcomes a model procedure can produce.
// The renderer type-switches over the three concrete result structs, so an
// unhandled result kind fails at compile time rather than at request time.
type ModelResult interface {
	Kind() ModelKind
}

// ClassificationResult is produced by the SVM and random-forest procedures.
type ClassificationResult struct {
	Model       ModelKind `json:"model"`
	Predictions []int     `json:"predictions"`
	TrueLabels  []int     `json:"true_labels"`
	// Probabilities holds one row per sample, one column per class.
	Probabilities [][]float64 `json:"probabilities"`
	Accuracy      float64     `json:"accuracy"`
	CrossValMean  float64     `json:"cv_accuracy_mean"`
	CrossValStd   float64     `json:"cv_accuracy_std"`
	// ConfusionMatrix is indexed [true][predicted].
	ConfusionMatrix [][]int `json:"confusion_matrix"`
	NClasses        int     `json:"n_classes"`

	// FeatureImportance and TopFeatures are populated by the random
	// forest only (per-gene mean decrease in impurity, top 20 indices).
	FeatureImportance []float64 `json:"feature_importance,omitempty"`
	TopFeatures       []int     `json:"top_features_idx,omitempty"`

	// Scaled is the standardized samples-by-genes matrix the model was
	// fitted on, carried for rendering only.
	Scaled [][]float64 `json:"-"`
}

// Kind implements ModelResult.
func (r *ClassificationResult) Kind() ModelKind { return r.Model }

// ClusteringResult is produced by the hierarchical and k-means procedures.
type ClusteringResult struct {
	Model      ModelKind `json:"model"`
	Labels     []int     `json:"cluster_labels"`
	NClusters  int       `json:"n_clusters"`
	Silhouette float64   `json:"silhouette_score"`

	// Centers is set by k-means (one row per cluster); Linkage and the
	// per-merge history are set by hierarchical clustering.
	Centers [][]float64 `json:"centers,omitempty"`
	Inertia float64     `json:"inertia,omitempty"`
	Linkage string      `json:"linkage,omitempty"`

	Scaled [][]float64 `json:"-"`
}

// Kind implements ModelResult.
func (r *ClusteringResult) Kind() ModelKind { return r.Model }

// FeatureSelectionResult is produced by the lasso and ridge procedures.
type FeatureSelectionResult struct {
	Model        ModelKind `json:"model"`
	Coefficients []float64 `json:"coefficients"`

	// SelectedIdx/SelectedCoef are the lasso's surviving features
	// (|coefficient| > 1e-6); TopFeatures is the ridge's top 20 by
	// absolute magnitude.
	SelectedIdx  []int     `json:"selected_features_idx,omitempty"`
	SelectedCoef []float64 `json:"selected_features_coef,omitempty"`
	TopFeatures  []int     `json:"top_features_idx,omitempty"`

	Alpha float64 `json:"alpha"`

	Scaled [][]float64 `json:"-"`
}

// Kind implements ModelResult.
func (r *FeatureSelectionResult) Kind() ModelKind { return r.Model }
