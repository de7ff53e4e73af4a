package category

type CategoryResponse struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type CategoriesResponse struct {
	Categories []CategoryResponse `json:"categories"`
}

func (c Category) ToResponse() CategoryResponse {
	return CategoryResponse{
		Name:        string(c),
		Description: c.Description(),
	}
}
