package category

type Service struct{}

func NewService() *Service {
	return &Service{}
}

func (s *Service) GetAllCategories() []CategoryResponse {
	out := make([]CategoryResponse, len(All))
	for i, c := range All {
		out[i] = c.ToResponse()
	}
	return out
}

func (s *Service) IsValidCategory(name string) bool {
	return Category(name).IsValid()
}
