package models

// ResumeAnalysis is the résumé-to-job match returned by the LLM.
type ResumeAnalysis struct {
	MatchScore          Score    `json:"matchScore"`
	KeySkillsMatch      []string `json:"keySkillsMatch"`
	MissingSkills       []string `json:"missingSkills"`
	ExperienceRelevance Score    `json:"experienceRelevance"`
	EducationRelevance  Score    `json:"educationRelevance"`
	Strengths           []string `json:"strengths"`
	Weaknesses          []string `json:"weaknesses"`
	Summary             string   `json:"summary"`
	Recommendations     []string `json:"recommendations"`
}

// DefaultResumeAnalysis is returned when the model output cannot be parsed.
func DefaultResumeAnalysis() *ResumeAnalysis {
	return &ResumeAnalysis{
		MatchScore:          65,
		KeySkillsMatch:      []string{"Communication", "Problem Solving", "Teamwork"},
		MissingSkills:       []string{"Specific technical skill", "Leadership experience"},
		ExperienceRelevance: 70,
		EducationRelevance:  80,
		Strengths:           []string{"Relevant education", "Some applicable experience"},
		Weaknesses:          []string{"Missing key technical skills", "Limited industry experience"},
		Summary:             "Moderate match with some relevant qualifications but missing some key requirements.",
		Recommendations:     []string{"Highlight relevant projects", "Acquire missing technical skills"},
	}
}

// MatchLevel buckets the match score the way results are presented.
func (r *ResumeAnalysis) MatchLevel() string {
	switch {
	case r.MatchScore >= 70:
		return "Strong match"
	case r.MatchScore >= 50:
		return "Moderate match"
	default:
		return "Weak match"
	}
}

// DefaultQuestions is used when fewer than three questions can be recovered
// from the model output.
func DefaultQuestions() []string {
	return []string{
		"Could you tell me about your relevant experience for this role?",
		"How do your skills align with the requirements in the job description?",
		"Can you describe a challenging project you've worked on?",
		"What interests you most about this position?",
		"How do you stay updated with the latest trends in your field?",
	}
}
