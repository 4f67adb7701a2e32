package domain

// Archetype is a preset personality template used to seed new characters.
type Archetype struct {
	Key         string   `yaml:"key"`
	Title       string   `yaml:"title"`
	Personality string   `yaml:"personality"`
	Needs       []string `yaml:"needs"`
	Greeting    string   `yaml:"greeting"`
}
