package classifier

// Condition names used by the decision rules.
const (
	Normal           = "normal"
	Dust             = "dust"
	Shading          = "shading"
	BirdDroppings    = "bird_droppings"
	PhysicalDamage   = "physical_damage"
	ElectricalDamage = "electrical_damage"
)

// Condition is one output class of the model together with the text shown
// to an operator when it is predicted.
type Condition struct {
	Name        string `koanf:"name" json:"name" yaml:"name"`
	Description string `koanf:"description" json:"description" yaml:"description"`
	Action      string `koanf:"action" json:"action" yaml:"action"`
}

// DefaultConditions is the six-class head, in model output order.
func DefaultConditions() []Condition {
	return []Condition{
		{
			Name:        Normal,
			Description: "Panel surface is clean and operating normally",
			Action:      "No action needed",
		},
		{
			Name:        Dust,
			Description: "Dust accumulation is reducing light absorption",
			Action:      "Schedule panel cleaning",
		},
		{
			Name:        Shading,
			Description: "Part of the panel is shaded by an obstruction",
			Action:      "Trim vegetation or remove the obstruction",
		},
		{
			Name:        BirdDroppings,
			Description: "Bird droppings are blocking cells and may cause hot spots",
			Action:      "Clean affected area and consider bird deterrents",
		},
		{
			Name:        PhysicalDamage,
			Description: "Cracked glass, frame damage or delamination detected",
			Action:      "Immediate inspection required, panel may need replacement",
		},
		{
			Name:        ElectricalDamage,
			Description: "Burn marks, hot spots or connector damage detected",
			Action:      "Disconnect and contact a certified technician immediately",
		},
	}
}

func conditionNames(conditions []Condition) []string {
	names := make([]string, len(conditions))
	for i, c := range conditions {
		names[i] = c.Name
	}
	return names
}
