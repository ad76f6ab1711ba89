package appconf

// Environment is the operating environment of the server
type Environment int

const (
	Development Environment = iota
	Test
	Production
)

// EnvFlagToEnvironment maps the -env flag value to an Environment.
// Unknown values are treated as development.
func EnvFlagToEnvironment(env string) Environment {
	switch env {
	case "production":
		return Production
	case "test":
		return Test
	default:
		return Development
	}
}

func (e Environment) String() string {
	switch e {
	case Production:
		return "production"
	case Test:
		return "test"
	default:
		return "development"
	}
}

// UnmarshalText lets the environment be given by name in YAML config files
func (e *Environment) UnmarshalText(text []byte) error {
	*e = EnvFlagToEnvironment(string(text))
	return nil
}
