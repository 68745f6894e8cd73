package diagram

// SupportedTypes lists the diagram types offered by the editor.
func SupportedTypes() []string {
	return []string{
		"flowchart",
		"graph",
		"sequenceDiagram",
		"classDiagram",
		"stateDiagram",
		"gantt",
		"pie",
		"journey",
		"gitgraph",
		"requirement",
		"mindmap",
		"timeline",
	}
}

var examples = map[string]string{
	"flowchart": `flowchart TD
    A[Start] --> B{Is it working?}
    B -->|Yes| C[Great!]
    B -->|No| D[Debug]
    D --> B
    C --> E[End]`,

	"sequence": `sequenceDiagram
    participant User
    participant App
    participant API

    User->>App: Request data
    App->>API: Fetch data
    API-->>App: Return data
    App-->>User: Display data`,

	"class": `classDiagram
    class Animal {
        +String name
        +int age
        +makeSound()
    }

    class Dog {
        +String breed
        +bark()
    }

    Animal <|-- Dog`,
}

// Example returns a starter diagram for kind ("flowchart", "sequence" or
// "class"). Unknown kinds get the flowchart.
func Example(kind string) string {
	if ex, ok := examples[kind]; ok {
		return ex
	}
	return examples["flowchart"]
}
