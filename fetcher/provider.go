package fetcher

// ListProvider serves a fixed, ordered URL list. It is not safe for
// concurrent use.
type ListProvider struct {
	urls []string
	next int
}

// NewListProvider returns a provider over urls in the given order.
func NewListProvider(urls ...string) *ListProvider {
	return &ListProvider{urls: urls}
}

// Next implements Provider.
func (p *ListProvider) Next() (string, bool) {
	if p.next >= len(p.urls) {
		return "", false
	}
	url := p.urls[p.next]
	p.next++
	return url, true
}

// Total implements Provider.
func (p *ListProvider) Total() int {
	return len(p.urls)
}
