package judge0

import (
	"strings"

	"codecamp/internal/domain/model"
)

// Judge0 CE language ids.
var languages = []model.Language{
	{Name: "c", DisplayName: "C (GCC 9.2.0)", Judge0ID: 50},
	{Name: "cpp", DisplayName: "C++ (GCC 9.2.0)", Judge0ID: 54, Aliases: []string{"c++", "cplusplus"}},
	{Name: "csharp", DisplayName: "C# (Mono 6.6.0.161)", Judge0ID: 51, Aliases: []string{"c#", "cs"}},
	{Name: "go", DisplayName: "Go (1.13.5)", Judge0ID: 60, Aliases: []string{"golang"}},
	{Name: "java", DisplayName: "Java (OpenJDK 13.0.1)", Judge0ID: 62},
	{Name: "javascript", DisplayName: "JavaScript (Node.js 12.14.0)", Judge0ID: 63, Aliases: []string{"js", "node"}},
	{Name: "kotlin", DisplayName: "Kotlin (1.3.70)", Judge0ID: 78, Aliases: []string{"kt"}},
	{Name: "php", DisplayName: "PHP (7.4.1)", Judge0ID: 68},
	{Name: "python", DisplayName: "Python (3.8.1)", Judge0ID: 71, Aliases: []string{"python3", "py"}},
	{Name: "ruby", DisplayName: "Ruby (2.7.0)", Judge0ID: 72, Aliases: []string{"rb"}},
	{Name: "rust", DisplayName: "Rust (1.40.0)", Judge0ID: 73, Aliases: []string{"rs"}},
	{Name: "swift", DisplayName: "Swift (5.2.3)", Judge0ID: 83},
	{Name: "typescript", DisplayName: "TypeScript (3.7.4)", Judge0ID: 74, Aliases: []string{"ts"}},
}

var languageIDs = func() map[string]int {
	m := make(map[string]int, len(languages)*2)
	for _, l := range languages {
		m[l.Name] = l.Judge0ID
		for _, a := range l.Aliases {
			m[a] = l.Judge0ID
		}
	}
	return m
}()

// LanguageID maps a human-readable language name to its Judge0 id.
func LanguageID(name string) (int, bool) {
	id, ok := languageIDs[strings.ToLower(strings.TrimSpace(name))]
	return id, ok
}

func Languages() []model.Language {
	out := make([]model.Language, len(languages))
	copy(out, languages)
	return out
}
