package deepface

// RepresentRequest for POST /represent
type RepresentRequest struct {
	Img              string `json:"img"`               // data URI of a JPEG
	Model            string `json:"model_name"`        // "Facenet", "VGG-Face", etc
	Detector         string `json:"detector_backend"`  // "opencv", "retinaface", etc
	EnforceDetection bool   `json:"enforce_detection"` // answer 400 when no face is found
}

// RepresentResponse from POST /represent
type RepresentResponse struct {
	Results []RepresentResult `json:"results"`
}

type RepresentResult struct {
	Embedding  []float64  `json:"embedding"`
	FacialArea FacialArea `json:"facial_area"`
}

type FacialArea struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}
