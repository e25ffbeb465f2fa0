package errx

// RegistryEntry describes a registered error code.
type RegistryEntry struct {
	Code        string
	Description string
}

// Codes use the engine's five-character SQLSTATE layout. The first two
// characters are the class; the rest is the condition within the class.
const (
	CodeFormat          = "22021" // character_not_in_repertoire
	CodeRaised          = "38000" // external_routine_exception
	CodeRelayed         = "39000" // external_routine_invocation_exception
	CodeUsage           = "55000" // object_not_in_prerequisite_state
	CodeStackCorruption = "XX000" // internal_error
	CodeConfig          = "F0000" // config_file_error
	CodeScenario        = "58000" // system_error
)

const (
	DescFormat          = "Format error"
	DescRaised          = "Raised error"
	DescRelayed         = "Relayed error"
	DescUsage           = "Bridge usage error"
	DescStackCorruption = "Exception stack corruption"
	DescConfig          = "Configuration error"
	DescScenario        = "Scenario error"
)

var registryEntries = []RegistryEntry{
	{Code: CodeFormat, Description: DescFormat},
	{Code: CodeRaised, Description: DescRaised},
	{Code: CodeRelayed, Description: DescRelayed},
	{Code: CodeUsage, Description: DescUsage},
	{Code: CodeStackCorruption, Description: DescStackCorruption},
	{Code: CodeConfig, Description: DescConfig},
	{Code: CodeScenario, Description: DescScenario},
}

var registryMap = func() map[string]string {
	m := make(map[string]string, len(registryEntries))
	for _, entry := range registryEntries {
		m[entry.Code] = entry.Description
	}
	return m
}()

// ErrorRegistry returns the error registry in deterministic order.
func ErrorRegistry() []RegistryEntry {
	entries := make([]RegistryEntry, len(registryEntries))
	copy(entries, registryEntries)
	return entries
}

// DescriptionFor returns the registry description for a code.
func DescriptionFor(code string) (string, bool) {
	desc, ok := registryMap[code]
	return desc, ok
}

// IsValidCode checks if the given error code is registered.
func IsValidCode(code string) bool {
	_, ok := registryMap[code]
	return ok
}
