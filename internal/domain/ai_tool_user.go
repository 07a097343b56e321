package domain

// AIToolUser records which AI tools an employee has been provisioned with.
type AIToolUser struct {
	ID       int
	Division string
	Team     string
	Name     string
	Email    string
	Tools    AITools
}

// AITools is the set of tool licenses.
type AITools struct {
	Skywork bool
	Gemini  bool
	ChatGPT bool
	Cursor  bool
	Claude  bool
}
