package ner

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// DefaultSkills is the built-in phrase vocabulary for skill matching. A
// deployment can replace it with a YAML file via LoadSkills.
var DefaultSkills = []string{
	"Python", "Java", "JavaScript", "TypeScript", "C++", "C#", "Go", "Rust",
	"SQL", "NoSQL", "MongoDB", "PostgreSQL", "MySQL", "Redis",
	"React", "Angular", "Vue", "Next.js", "Node.js", "Django", "FastAPI", "Flask",
	"AWS", "Azure", "GCP", "Docker", "Kubernetes", "Terraform",
	"Machine Learning", "Deep Learning", "NLP", "Computer Vision", "TensorFlow", "PyTorch", "Scikit-learn",
	"Project Management", "Agile", "Scrum", "Communication", "Leadership",
}

type vocabularyFile struct {
	Skills []string `yaml:"skills"`
}

// LoadSkills reads a skill vocabulary from a YAML file of the form:
//
//	skills:
//	  - Python
//	  - Machine Learning
func LoadSkills(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read skills file: %w", err)
	}
	var vf vocabularyFile
	if err := yaml.Unmarshal(raw, &vf); err != nil {
		return nil, fmt.Errorf("parse skills file: %w", err)
	}
	if len(vf.Skills) == 0 {
		return nil, fmt.Errorf("skills file %s lists no skills", path)
	}
	return vf.Skills, nil
}
