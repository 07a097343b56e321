package dto

import (
	"github.com/spec-kit/improvement-board/internal/domain"
	"github.com/spec-kit/improvement-board/internal/service"
)

// DepartmentCountResponse is one by-department bucket.
type DepartmentCountResponse struct {
	DepartmentResponse
	Count int `json:"count"`
}

// StaleItemResponse is an item that has not moved for a while.
type StaleItemResponse struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	DaysSinceUpdate int    `json:"daysSinceUpdate"`
	Department      struct {
		Name string `json:"name"`
	} `json:"department"`
}

// DashboardResponse is the summary payload.
type DashboardResponse struct {
	Total        int                       `json:"total"`
	ByStatus     map[domain.ItemStatus]int `json:"byStatus"`
	ByDepartment []DepartmentCountResponse `json:"byDepartment"`
	StaleItems   []StaleItemResponse       `json:"staleItems"`
}

// NewDashboardResponse maps a summary.
func NewDashboardResponse(s *service.Summary) DashboardResponse {
	resp := DashboardResponse{
		Total:        s.Total,
		ByStatus:     s.ByStatus,
		ByDepartment: make([]DepartmentCountResponse, 0, len(s.ByDepartment)),
		StaleItems:   make([]StaleItemResponse, 0, len(s.StaleItems)),
	}
	for _, c := range s.ByDepartment {
		resp.ByDepartment = append(resp.ByDepartment, DepartmentCountResponse{
			DepartmentResponse: NewDepartmentResponse(c.Department),
			Count:              c.Count,
		})
	}
	for _, st := range s.StaleItems {
		item := StaleItemResponse{ID: st.ID, Title: st.Title, DaysSinceUpdate: st.DaysSinceUpdate}
		item.Department.Name = st.DepartmentName
		resp.StaleItems = append(resp.StaleItems, item)
	}
	return resp
}
