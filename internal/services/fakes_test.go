package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"DR-SIGN/internal/apperr"
	"DR-SIGN/internal/geo"
	"DR-SIGN/internal/mailer"
	"DR-SIGN/internal/models"
	"DR-SIGN/internal/notify"
	"DR-SIGN/internal/repository"
)

type memContractStore struct {
	mu        sync.Mutex
	contracts map[string]models.Contract
	links     map[string]models.ContractSignLink
	updateErr error
}

func newMemContractStore(contracts ...models.Contract) *memContractStore {
	m := &memContractStore{
		contracts: make(map[string]models.Contract),
		links:     make(map[string]models.ContractSignLink),
	}
	for _, c := range contracts {
		m.contracts[c.ID] = c
	}
	return m
}

func (m *memContractStore) contract(id string) models.Contract {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.contracts[id]
}

func (m *memContractStore) linkCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.links)
}

func (m *memContractStore) addLink(link models.ContractSignLink) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.links[link.ID] = link
}

func (m *memContractStore) FindContract(_ context.Context, id string) (*models.Contract, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.contracts[id]
	if !ok {
		return nil, apperr.NotFound("contract")
	}
	return &c, nil
}

func (m *memContractStore) UpdateContract(_ context.Context, id string, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	c, ok := m.contracts[id]
	if !ok {
		return apperr.NotFound("contract")
	}
	for key, value := range fields {
		switch key {
		case "status":
			c.Status = value.(models.ContractStatus)
		case "signed_at":
			t := value.(time.Time)
			c.SignedAt = &t
		case "signature_ip":
			c.SignatureIP = value.(string)
		case "signature_location":
			c.SignatureLocation = value.(string)
		case "signature_reference":
			c.SignatureReference = value.(string)
		case "signed_pdf_url":
			c.SignedPDFURL = value.(string)
		default:
			return fmt.Errorf("unexpected field %s", key)
		}
	}
	m.contracts[id] = c
	return nil
}

func (m *memContractStore) ListSignedContracts(_ context.Context, organizationID string) ([]models.Contract, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Contract
	for _, c := range m.contracts {
		if c.OrganizationID == organizationID && c.Status.IsSigned() {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ContractNumber < out[j].ContractNumber })
	return out, nil
}

func (m *memContractStore) FindSignLinkByToken(_ context.Context, token string) (*models.ContractSignLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, link := range m.links {
		if link.Token == token {
			if c, ok := m.contracts[link.ContractID]; ok {
				link.Contract = &c
			}
			return &link, nil
		}
	}
	return nil, apperr.NotFound("sign link")
}

func (m *memContractStore) FindActiveSignLink(_ context.Context, contractID string, now time.Time) (*models.ContractSignLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, link := range m.links {
		if link.ContractID == contractID && !link.ExpiresAt.Before(now) {
			return &link, nil
		}
	}
	return nil, apperr.NotFound("sign link")
}

func (m *memContractStore) CreateSignLink(_ context.Context, link *models.ContractSignLink) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.links[link.ID] = *link
	return nil
}

func (m *memContractStore) DeleteSignLink(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.links, id)
	return nil
}

func (m *memContractStore) DeleteSignLinksByContract(_ context.Context, contractID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, link := range m.links {
		if link.ContractID == contractID {
			delete(m.links, id)
		}
	}
	return nil
}

func (m *memContractStore) DeleteExpiredSignLinks(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, link := range m.links {
		if link.ExpiresAt.Before(now) {
			delete(m.links, id)
			n++
		}
	}
	return n, nil
}

func (m *memContractStore) WithinTransaction(_ context.Context, fn func(repository.ContractStore) error) error {
	return fn(m)
}

type memTemplateStore struct {
	mu            sync.Mutex
	templates     map[string]models.ContractTemplate
	usage         map[string]int64
	unsetDefaults []string
	cacheWrites   int
}

func newMemTemplateStore(templates ...models.ContractTemplate) *memTemplateStore {
	m := &memTemplateStore{
		templates: make(map[string]models.ContractTemplate),
		usage:     make(map[string]int64),
	}
	for _, t := range templates {
		m.templates[t.ID] = t
	}
	return m
}

func (m *memTemplateStore) FindTemplate(_ context.Context, id string) (*models.ContractTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.templates[id]
	if !ok {
		return nil, apperr.NotFound("template")
	}
	return &t, nil
}

func (m *memTemplateStore) FindDefaultTemplate(_ context.Context, contractTypeID string, organizationID *string) (*models.ContractTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.templates {
		if t.ContractTypeID != contractTypeID || !t.IsDefault || !t.IsActive {
			continue
		}
		if sameScope(t.OrganizationID, organizationID) {
			return &t, nil
		}
	}
	return nil, apperr.NotFound("template")
}

func (m *memTemplateStore) ListTemplates(_ context.Context, organizationID string) ([]models.ContractTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ContractTemplate
	for _, t := range m.templates {
		if t.OrganizationID == nil || *t.OrganizationID == organizationID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memTemplateStore) CreateTemplate(_ context.Context, t *models.ContractTemplate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.templates[t.ID] = *t
	return nil
}

func (m *memTemplateStore) SaveTemplate(_ context.Context, t *models.ContractTemplate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.templates[t.ID] = *t
	return nil
}

func (m *memTemplateStore) DeleteTemplate(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.templates, id)
	return nil
}

func (m *memTemplateStore) UnsetDefaults(_ context.Context, contractTypeID string, organizationID *string, exceptID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, t := range m.templates {
		if id != exceptID && t.ContractTypeID == contractTypeID && t.IsDefault && sameScope(t.OrganizationID, organizationID) {
			t.IsDefault = false
			m.templates[id] = t
			m.unsetDefaults = append(m.unsetDefaults, id)
		}
	}
	return nil
}

func (m *memTemplateStore) UpdateHTMLCache(_ context.Context, id string, html string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.templates[id]
	if !ok {
		return apperr.NotFound("template")
	}
	t.HTMLCache = &html
	m.templates[id] = t
	m.cacheWrites++
	return nil
}

func (m *memTemplateStore) CountContractsUsingTemplate(_ context.Context, id string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.usage[id], nil
}

func (m *memTemplateStore) WithinTransaction(_ context.Context, fn func(repository.TemplateStore) error) error {
	return fn(m)
}

func sameScope(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

type memObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	err     error
}

func newMemObjectStore() *memObjectStore {
	return &memObjectStore{objects: make(map[string][]byte)}
}

func (s *memObjectStore) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	s.objects[key] = data
	return "https://storage.example.com/bucket/" + key, nil
}

func (s *memObjectStore) keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type generateCall struct {
	contract models.Contract
	opts     DocumentOptions
}

type fakeDocuments struct {
	mu    sync.Mutex
	calls []generateCall
	err   error
}

func (d *fakeDocuments) Generate(_ context.Context, contract *models.Contract, opts DocumentOptions) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, generateCall{contract: *contract, opts: opts})
	if d.err != nil {
		return "", d.err
	}
	return fmt.Sprintf("https://storage.example.com/bucket/contracts/%s/signed_%d.pdf", contract.ID, opts.Now.UnixMilli()), nil
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []notify.Event
	err    error
}

func (n *fakeNotifier) Notify(_ context.Context, event notify.Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return n.err
}

type fakeLocator struct {
	location *geo.Location
	err      error
	lookups  []string
}

func (l *fakeLocator) Lookup(_ context.Context, ip string) (*geo.Location, error) {
	l.lookups = append(l.lookups, ip)
	if l.err != nil {
		return nil, l.err
	}
	return l.location, nil
}

type fakeConverter struct {
	html []string
	err  error
}

func (c *fakeConverter) RenderHTML(_ context.Context, html string) ([]byte, error) {
	c.html = append(c.html, html)
	if c.err != nil {
		return nil, c.err
	}
	return []byte("%PDF-1.7 converted"), nil
}

var errBoom = errors.New("boom")
