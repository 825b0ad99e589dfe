package model

// Page пагинация skip/limit
type Page struct {
	Skip  int
	Limit int
}

// Normalize подставляет лимит по умолчанию и ограничивает сверху
func (p Page) Normalize(defaultLimit, maxLimit int) Page {
	if p.Skip < 0 {
		p.Skip = 0
	}
	if p.Limit <= 0 {
		p.Limit = defaultLimit
	}
	if maxLimit > 0 && p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	return p
}
