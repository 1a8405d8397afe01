package pages

import (
	"fmt"
	"strings"

	"grape-bot/internal/domain/entity"
)

// Stat короткий показатель вида «95% Detection Accuracy»
type Stat struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// Block раздел страницы
type Block struct {
	Heading string   `json:"heading" yaml:"heading"`
	Text    string   `json:"text,omitempty" yaml:"text,omitempty"`
	Items   []string `json:"items,omitempty" yaml:"items,omitempty"`
}

// Page статическое содержимое раздела
type Page struct {
	Title  string  `json:"title" yaml:"title"`
	Intro  string  `json:"intro" yaml:"intro"`
	Stats  []Stat  `json:"stats,omitempty" yaml:"stats,omitempty"`
	Blocks []Block `json:"blocks,omitempty" yaml:"blocks,omitempty"`
}

var home = Page{
	Title: "AI-Powered Grape Disease Detection System",
	Intro: "Protect your vineyard with cutting-edge machine learning technology. " +
		"Instantly detect and diagnose grape leaf diseases with professional-grade accuracy and validation.",
	Stats: []Stat{
		{"95%", "Detection Accuracy"},
		{"<2s", "Analysis Time"},
		{"12+", "Disease Types"},
		{"99%", "Image Validation"},
	},
	Blocks: []Block{
		{
			Heading: "How It Works",
			Text:    "Our advanced AI system validates and analyzes grape leaf images to provide instant, accurate disease detection",
			Items: []string{
				"1. Upload Image: take or upload a clear photo of the grape leaf",
				"2. Image Validation: AI validates the image contains a grape leaf",
				"3. AI Analysis: machine learning model analyzes for diseases",
				"4. Get Results: receive diagnosis and treatment recommendations",
			},
		},
	},
}

var features = Page{
	Title: "Advanced Features for Professional Vineyard Management",
	Intro: "Our AI-powered system provides comprehensive grape leaf disease detection with intelligent image validation",
	Stats: []Stat{
		{"CNN", "Convolutional Neural Network"},
		{"TensorFlow", "Deep Learning Framework"},
		{"15K+", "Training Images"},
		{"99%", "Validation Accuracy"},
	},
	Blocks: []Block{
		{
			Heading: "Smart Image Validation",
			Text:    "Advanced pre-processing validates uploaded images to ensure they contain grape leaves before analysis:",
			Items: []string{
				"Real-time leaf detection",
				"Non-grape image rejection",
				"Quality assessment checks",
				"Training dataset validation",
			},
		},
		{
			Heading: "Machine Learning Detection",
			Text:    "Advanced deep learning algorithms trained on thousands of grape leaf images to accurately identify diseases:",
			Items: []string{
				"Black Rot Detection",
				"Downy Mildew Analysis",
				"Powdery Mildew Recognition",
				"Anthracnose Identification",
			},
		},
		{
			Heading: "Real-time Analysis",
			Text:    "Get instant results with our optimized inference pipeline and error handling:",
			Items: []string{
				"Sub-2 second processing time",
				"Confidence scoring system",
				"Severity level assessment",
				"Treatment urgency rating",
			},
		},
		{
			Heading: "Error Handling & Feedback",
			Text:    "Comprehensive error handling with clear user feedback for various scenarios:",
			Items: []string{
				"Non-grape leaf detection",
				"Untrained variety warnings",
				"File format validation",
				"Size limit enforcement",
			},
		},
	},
}

func scan(maxSize int64) Page {
	return Page{
		Title: "Grape Leaf Disease Scanner",
		Intro: "Upload an image of a grape leaf to detect diseases instantly with intelligent validation",
		Blocks: []Block{
			{
				Heading: "Select Grape Leaf Image",
				Items: []string{
					entity.UploadHint(maxSize),
					"✓ Smart validation ensures only grape leaf images are processed",
				},
			},
		},
	}
}

// For возвращает содержимое раздела. Для неизвестного раздела возвращается главная.
func For(section entity.Section) Page {
	return ForLimit(section, entity.DefaultMaxUploadSize)
}

// ForLimit как For, но раздел Scan показывает переданный лимит размера файла.
func ForLimit(section entity.Section, maxSize int64) Page {
	switch section {
	case entity.SectionFeatures:
		return features
	case entity.SectionScan:
		return scan(maxSize)
	default:
		return home
	}
}

// Text простое текстовое представление страницы для чата и терминала.
func (p Page) Text() string {
	var b strings.Builder
	b.WriteString(p.Title)
	b.WriteString("\n\n")
	b.WriteString(p.Intro)
	b.WriteString("\n")

	if len(p.Stats) > 0 {
		b.WriteString("\n")
		for _, s := range p.Stats {
			fmt.Fprintf(&b, "%s %s\n", s.Value, s.Label)
		}
	}

	for _, block := range p.Blocks {
		fmt.Fprintf(&b, "\n%s\n", block.Heading)
		if block.Text != "" {
			b.WriteString(block.Text)
			b.WriteString("\n")
		}
		for _, item := range block.Items {
			fmt.Fprintf(&b, "• %s\n", item)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}
