package dto

// Pagination holds common paging query parameters
type Pagination struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// Normalize applies defaults and returns limit/offset
func (p *Pagination) Normalize() (limit, offset int) {
	page := p.Page
	if page < 1 {
		page = 1
	}
	size := p.PageSize
	if size < 1 {
		size = 20
	}
	return size, (page - 1) * size
}

// PaginatedResponse wraps a page of results
type PaginatedResponse struct {
	Items    interface{} `json:"items"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}
