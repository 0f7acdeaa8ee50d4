// internal/domain/models/listpage.go
package models

// ListPage is one page of registrants plus the pagination metadata that
// came with it (or was derived locally when the backend sent none).
type ListPage struct {
	Users        []Registrant `json:"users"`
	CurrentPage  int          `json:"currentPage"`
	TotalPages   int          `json:"totalPages"`
	TotalUsers   int          `json:"totalUsers"`
	UsersPerPage int          `json:"usersPerPage"`
}

// ListQuery is what the dashboard asks the backend for.
type ListQuery struct {
	Page   int
	Limit  int
	Search string
	Course Course // CourseAll means no address filter
}
