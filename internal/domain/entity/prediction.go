package entity

// Disease метка болезни листа винограда
type Disease string

const (
	DiseaseBlackRot      Disease = "Black Rot"
	DiseaseDownyMildew   Disease = "Downy Mildew"
	DiseasePowderyMildew Disease = "Powdery Mildew"
	DiseaseAnthracnose   Disease = "Anthracnose"
	DiseaseHealthy       Disease = "Healthy"
)

// Diseases полный набор меток в порядке выбора
var Diseases = []Disease{
	DiseaseBlackRot,
	DiseaseDownyMildew,
	DiseasePowderyMildew,
	DiseaseAnthracnose,
	DiseaseHealthy,
}

// Severity степень поражения
type Severity string

const (
	SeverityNone     Severity = "None"
	SeverityMild     Severity = "Mild"
	SeverityModerate Severity = "Moderate"
	SeveritySevere   Severity = "Severe"
)

// Severities уровни для больного листа
var Severities = []Severity{SeverityMild, SeverityModerate, SeveritySevere}

// Urgency срочность лечения
type Urgency string

const (
	UrgencyNone   Urgency = "None"
	UrgencyLow    Urgency = "Low"
	UrgencyMedium Urgency = "Medium"
	UrgencyHigh   Urgency = "High"
)

// Urgencies уровни для больного листа
var Urgencies = []Urgency{UrgencyLow, UrgencyMedium, UrgencyHigh}

var (
	healthyRecommendations = []string{
		"Leaf appears healthy",
		"Continue regular monitoring",
		"Maintain good vineyard hygiene",
		"Ensure proper air circulation",
	}
	diseaseRecommendations = []string{
		"Apply copper-based fungicide immediately",
		"Remove and destroy affected leaves",
		"Improve air circulation around vines",
		"Monitor surrounding plants for spread",
		"Consider organic treatment options",
	}
)

// Recommendations возвращает копию фиксированного списка советов
func Recommendations(d Disease) []string {
	src := diseaseRecommendations
	if d == DiseaseHealthy {
		src = healthyRecommendations
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// Advice подпись к уровню срочности
func (u Urgency) Advice() string {
	switch u {
	case UrgencyHigh:
		return "Immediate action required"
	case UrgencyMedium:
		return "Treatment recommended within days"
	case UrgencyLow:
		return "Monitor and treat as needed"
	default:
		return "Continue regular monitoring"
	}
}

// Prediction результат классификации листа
type Prediction struct {
	Disease          Disease  `json:"disease" yaml:"disease"`
	Confidence       float64  `json:"confidence" yaml:"confidence"` // проценты, один знак после запятой
	Severity         Severity `json:"severity" yaml:"severity"`
	Recommendations  []string `json:"recommendations" yaml:"recommendations"`
	TreatmentUrgency Urgency  `json:"treatment_urgency" yaml:"treatment_urgency"`
}

// IsHealthy сообщает, что болезнь не обнаружена
func (p *Prediction) IsHealthy() bool {
	return p.Disease == DiseaseHealthy
}
