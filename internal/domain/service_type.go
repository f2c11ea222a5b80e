package domain

type ServiceType struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Description       string `json:"description"`
	EstimatedDuration int    `json:"estimated_duration"`
	MaxConcurrent     int    `json:"max_concurrent"`
	Active            bool   `json:"active"`
	Icon              string `json:"icon,omitempty"`
	Color             string `json:"color,omitempty"`
}

// DefaultServiceTypes is the catalogue seeded on first startup when the
// store holds no service types.
func DefaultServiceTypes() []*ServiceType {
	return []*ServiceType{
		{
			ID:                "haircut",
			Name:              "Haircut",
			Description:       "Quick trim and styling at the pop-up salon",
			EstimatedDuration: 30,
			MaxConcurrent:     3,
			Active:            true,
			Icon:              "scissors",
			Color:             "#8B5CF6",
		},
		{
			ID:                "massage",
			Name:              "Massage",
			Description:       "Chair massage at the wellness corner",
			EstimatedDuration: 60,
			MaxConcurrent:     2,
			Active:            true,
			Icon:              "spa",
			Color:             "#10B981",
		},
		{
			ID:                "consultation",
			Name:              "Consultation",
			Description:       "One-on-one session with an event advisor",
			EstimatedDuration: 20,
			MaxConcurrent:     4,
			Active:            true,
			Icon:              "chat",
			Color:             "#3B82F6",
		},
		{
			ID:                "manicure",
			Name:              "Manicure",
			Description:       "Nail care at the beauty booth",
			EstimatedDuration: 45,
			MaxConcurrent:     2,
			Active:            true,
			Icon:              "sparkles",
			Color:             "#EC4899",
		},
	}
}
