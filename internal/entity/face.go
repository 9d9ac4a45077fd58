package entity

// FaceCandidate is one raw detection returned by the face detector.
type FaceCandidate struct {
	X          int     `json:"x" msgpack:"x"`
	Y          int     `json:"y" msgpack:"y"`
	Width      int     `json:"w" msgpack:"w"`
	Height     int     `json:"h" msgpack:"h"`
	Confidence float64 `json:"c" msgpack:"c"`
}

// FaceRegion is the selected face rectangle, already clamped to the source
// image bounds.
type FaceRegion struct {
	X          int     `json:"x"`
	Y          int     `json:"y"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Confidence float64 `json:"confidence"`
}

// FaceTensor is a square face crop standardized over its own pixels, in HWC
// RGB order. It is the only input accepted by the embedding network.
type FaceTensor struct {
	Size int
	Data []float32
}

// Embedding is a unit length biometric vector.
type Embedding []float64

type EmbeddingResult struct {
	Embedding  Embedding
	Region     FaceRegion
	Confidence float64
	LowQuality bool
}

type DetectionSummary struct {
	FaceDetected bool    `json:"face_detected"`
	NumFaces     int     `json:"num_faces"`
	Confidence   float64 `json:"confidence"`
}

type ComparisonResult struct {
	Similarity        float64 `json:"similarity"`
	CosineSimilarity  float64 `json:"cosine_similarity"`
	EuclideanDistance float64 `json:"euclidean_distance"`
	Match             bool    `json:"match"`
}
