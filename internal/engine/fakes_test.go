package engine

import (
	"context"
	"errors"
	"sync"
)

// fakePage replays a scripted sequence of container counts.
// Each CountElements call consumes the next value; the last one repeats.
type fakePage struct {
	mu sync.Mutex

	counts   []int
	countErr []error
	html     string
	shot     []byte

	navigated  []string
	navErr     error
	scrolls    int
	countCalls int
	htmlErr    error
	closed     int
}

func (p *fakePage) Navigate(_ context.Context, url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.navigated = append(p.navigated, url)
	return p.navErr
}

func (p *fakePage) CountElements(_ context.Context, _ string) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	i := p.countCalls
	p.countCalls++
	if i < len(p.countErr) && p.countErr[i] != nil {
		return 0, p.countErr[i]
	}
	if len(p.counts) == 0 {
		return 0, nil
	}
	if i >= len(p.counts) {
		i = len(p.counts) - 1
	}
	return p.counts[i], nil
}

func (p *fakePage) HTML(context.Context) (string, error) {
	if p.htmlErr != nil {
		return "", p.htmlErr
	}
	return p.html, nil
}

func (p *fakePage) ScrollToBottom(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scrolls++
	return nil
}

func (p *fakePage) Screenshot(context.Context) ([]byte, error) {
	if p.shot == nil {
		return nil, errors.New("no screenshot")
	}
	return p.shot, nil
}

func (p *fakePage) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed++
	return nil
}

type fakeLauncher struct {
	page    *fakePage
	err     error
	proxies []string
}

func (l *fakeLauncher) Launch(_ context.Context, proxy string) (Browser, error) {
	l.proxies = append(l.proxies, proxy)
	if l.err != nil {
		return nil, l.err
	}
	return l.page, nil
}
