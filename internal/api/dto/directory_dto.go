package dto

import "github.com/spec-kit/improvement-board/internal/domain"

// DepartmentResponse is a department reference.
type DepartmentResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Code  string `json:"code"`
	Color string `json:"color"`
}

// UserResponse is a user profile.
type UserResponse struct {
	ID         string             `json:"id"`
	EmployeeID string             `json:"employeeId"`
	Name       string             `json:"name"`
	Email      string             `json:"email"`
	Role       domain.Role        `json:"role"`
	Department DepartmentResponse `json:"department"`
}

// NewDepartmentResponse maps a department.
func NewDepartmentResponse(d domain.Department) DepartmentResponse {
	return DepartmentResponse{ID: d.ID, Name: d.Name, Code: d.Code, Color: d.Color}
}

// NewDepartmentResponses maps a slice of departments.
func NewDepartmentResponses(depts []domain.Department) []DepartmentResponse {
	out := make([]DepartmentResponse, 0, len(depts))
	for _, d := range depts {
		out = append(out, NewDepartmentResponse(d))
	}
	return out
}

// NewUserResponse maps a profile.
func NewUserResponse(p domain.UserProfile) UserResponse {
	return UserResponse{
		ID:         p.User.ID,
		EmployeeID: p.User.EmployeeID,
		Name:       p.User.Name,
		Email:      p.User.Email,
		Role:       p.User.Role,
		Department: NewDepartmentResponse(p.Department),
	}
}

// NewUserResponses maps a slice of profiles.
func NewUserResponses(profiles []domain.UserProfile) []UserResponse {
	out := make([]UserResponse, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, NewUserResponse(p))
	}
	return out
}

// AIToolsPayload is the set of tool flags.
type AIToolsPayload struct {
	Skywork bool `json:"skywork"`
	Gemini  bool `json:"gemini"`
	ChatGPT bool `json:"chatgpt"`
	Cursor  bool `json:"cursor"`
	Claude  bool `json:"claude"`
}

// AIToolUserPayload is one roster row, both in requests and responses.
type AIToolUserPayload struct {
	ID       int            `json:"id,omitempty" validate:"gte=0"`
	Division string         `json:"division"`
	Team     string         `json:"team"`
	Name     string         `json:"name" validate:"required"`
	Email    string         `json:"email" validate:"omitempty,email"`
	Tools    AIToolsPayload `json:"tools"`
}

// SaveAIToolUsersRequest replaces the whole roster.
type SaveAIToolUsersRequest struct {
	Users []AIToolUserPayload `json:"users" validate:"dive"`
}

// Domain converts the payload rows.
func (r SaveAIToolUsersRequest) Domain() []domain.AIToolUser {
	out := make([]domain.AIToolUser, 0, len(r.Users))
	for _, u := range r.Users {
		out = append(out, domain.AIToolUser{
			ID:       u.ID,
			Division: u.Division,
			Team:     u.Team,
			Name:     u.Name,
			Email:    u.Email,
			Tools: domain.AITools{
				Skywork: u.Tools.Skywork,
				Gemini:  u.Tools.Gemini,
				ChatGPT: u.Tools.ChatGPT,
				Cursor:  u.Tools.Cursor,
				Claude:  u.Tools.Claude,
			},
		})
	}
	return out
}

// NewAIToolUserPayloads maps the stored roster.
func NewAIToolUserPayloads(users []domain.AIToolUser) []AIToolUserPayload {
	out := make([]AIToolUserPayload, 0, len(users))
	for _, u := range users {
		out = append(out, AIToolUserPayload{
			ID:       u.ID,
			Division: u.Division,
			Team:     u.Team,
			Name:     u.Name,
			Email:    u.Email,
			Tools: AIToolsPayload{
				Skywork: u.Tools.Skywork,
				Gemini:  u.Tools.Gemini,
				ChatGPT: u.Tools.ChatGPT,
				Cursor:  u.Tools.Cursor,
				Claude:  u.Tools.Claude,
			},
		})
	}
	return out
}
