package service

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"impact-service/internal/model"
	"impact-service/internal/news"
	"impact-service/internal/oauth"
	"impact-service/internal/payment"
	"impact-service/internal/recaptcha"
	"impact-service/internal/repository"
)

// In-memory fakes of the repository and gateway interfaces. They keep
// just enough semantics for the services under test to behave like they
// would against the real backends.

type memTemplateRepo struct {
	templates []*model.ReportBaseTemplate
}

func (r *memTemplateRepo) Create(ctx context.Context, t *model.ReportBaseTemplate) error {
	if t.UUID == uuid.Nil {
		t.UUID = uuid.New()
	}
	r.templates = append(r.templates, t)
	return nil
}

func (r *memTemplateRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.ReportBaseTemplate, error) {
	for _, t := range r.templates {
		if t.UUID == id {
			return t, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memTemplateRepo) ListVisible(ctx context.Context, tenantID uuid.UUID, category model.TemplateCategory) ([]model.ReportBaseTemplate, error) {
	var out []model.ReportBaseTemplate
	for _, t := range r.templates {
		if t.Category != category {
			continue
		}
		if t.IsOfficial || (t.TenantUUID != nil && *t.TenantUUID == tenantID) {
			out = append(out, *t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IsOfficial != out[j].IsOfficial {
			return out[i].IsOfficial
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *memTemplateRepo) FindTenantDefault(ctx context.Context, tenantID uuid.UUID, category model.TemplateCategory) (*model.ReportBaseTemplate, error) {
	var match *model.ReportBaseTemplate
	for _, t := range r.templates {
		if t.TenantUUID == nil || *t.TenantUUID != tenantID {
			continue
		}
		if !t.IsApproved || !t.IsDefault || t.Category != category {
			continue
		}
		if match == nil || t.CreatedAt.After(match.CreatedAt) {
			match = t
		}
	}
	if match == nil {
		return nil, repository.ErrNotFound
	}
	return match, nil
}

func (r *memTemplateRepo) FindOfficial(ctx context.Context, category model.TemplateCategory, titleContains string) (*model.ReportBaseTemplate, error) {
	var match *model.ReportBaseTemplate
	for _, t := range r.templates {
		if !t.IsOfficial || t.Category != category {
			continue
		}
		if !strings.Contains(strings.ToLower(t.Title), strings.ToLower(titleContains)) {
			continue
		}
		if match == nil || t.CreatedAt.After(match.CreatedAt) {
			match = t
		}
	}
	if match == nil {
		return nil, repository.ErrNotFound
	}
	return match, nil
}

func (r *memTemplateRepo) SetAsDefault(ctx context.Context, tenantID, templateID uuid.UUID, category model.TemplateCategory) error {
	for _, t := range r.templates {
		if t.TenantUUID != nil && *t.TenantUUID == tenantID && t.Category == category {
			t.IsDefault = false
		}
	}
	for _, t := range r.templates {
		if t.UUID == templateID {
			t.IsDefault = true
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *memTemplateRepo) Delete(ctx context.Context, t *model.ReportBaseTemplate) error {
	for i, existing := range r.templates {
		if existing.UUID == t.UUID {
			r.templates = append(r.templates[:i], r.templates[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

type memPortfolioRepo struct {
	portfolios []*model.Portfolio
}

func (r *memPortfolioRepo) Create(ctx context.Context, p *model.Portfolio) error {
	if p.UUID == uuid.Nil {
		p.UUID = uuid.New()
	}
	r.portfolios = append(r.portfolios, p)
	return nil
}

func (r *memPortfolioRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Portfolio, error) {
	for _, p := range r.portfolios {
		if p.UUID == id {
			return p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memPortfolioRepo) FindByReport(ctx context.Context, reportID string, tenantID, userID uuid.UUID) (*model.Portfolio, error) {
	for _, p := range r.portfolios {
		if p.ReportID == reportID && p.TenantUUID == tenantID &&
			p.UserUUID != nil && *p.UserUUID == userID &&
			p.Category == model.CategoryImpactReport {
			return p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memPortfolioRepo) FindAnyByReport(ctx context.Context, reportID string) (*model.Portfolio, error) {
	for _, p := range r.portfolios {
		if p.ReportID == reportID && p.Category == model.CategoryImpactReport {
			return p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memPortfolioRepo) ListByUser(ctx context.Context, userID uuid.UUID, category model.PortfolioCategory, limit int) ([]model.Portfolio, error) {
	var out []model.Portfolio
	for _, p := range r.portfolios {
		if p.UserUUID == nil || *p.UserUUID != userID {
			continue
		}
		if category != "" && p.Category != category {
			continue
		}
		out = append(out, *p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memPortfolioRepo) Update(ctx context.Context, p *model.Portfolio) error {
	for i, existing := range r.portfolios {
		if existing.UUID == p.UUID {
			r.portfolios[i] = p
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *memPortfolioRepo) Delete(ctx context.Context, p *model.Portfolio) error {
	for i, existing := range r.portfolios {
		if existing.UUID == p.UUID {
			r.portfolios = append(r.portfolios[:i], r.portfolios[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

type memConnectionRepo struct {
	connections []*model.DataConnection
	updates     int
}

func (r *memConnectionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.DataConnection, error) {
	for _, c := range r.connections {
		if c.UUID == id {
			return c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memConnectionRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]model.DataConnection, error) {
	var out []model.DataConnection
	for _, c := range r.connections {
		if c.TenantUUID == tenantID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *memConnectionRepo) ListExpiring(ctx context.Context, tenantID uuid.UUID) ([]model.DataConnection, error) {
	var out []model.DataConnection
	for _, c := range r.connections {
		if c.TenantUUID == tenantID && c.AccessTokenExpiresAt != nil {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *memConnectionRepo) Update(ctx context.Context, c *model.DataConnection) error {
	r.updates++
	for i, existing := range r.connections {
		if existing.UUID == c.UUID {
			r.connections[i] = c
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *memConnectionRepo) Delete(ctx context.Context, c *model.DataConnection) error {
	for i, existing := range r.connections {
		if existing.UUID == c.UUID {
			r.connections = append(r.connections[:i], r.connections[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

type memSourceRepo struct {
	sources []*model.DataSource
}

func (r *memSourceRepo) FindBySlug(ctx context.Context, slug string) (*model.DataSource, error) {
	for _, s := range r.sources {
		if s.Slug == slug {
			return s, nil
		}
	}
	return nil, repository.ErrNotFound
}

type memDonationRepo struct {
	donations []*model.Donation
}

func (r *memDonationRepo) Create(ctx context.Context, d *model.Donation) error {
	r.donations = append(r.donations, d)
	return nil
}

func (r *memDonationRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Donation, error) {
	for _, d := range r.donations {
		if d.UUID == id {
			return d, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memDonationRepo) FindBySubscription(ctx context.Context, subscription string) (*model.Donation, error) {
	for _, d := range r.donations {
		if d.Subscription == subscription {
			return d, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memDonationRepo) UpdateCheckout(ctx context.Context, id uuid.UUID, status, subscription string) error {
	for _, d := range r.donations {
		if d.UUID == id {
			d.Status = status
			d.Subscription = subscription
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *memDonationRepo) UpdateStatusBySubscription(ctx context.Context, subscription, status string) error {
	for _, d := range r.donations {
		if d.Subscription == subscription {
			d.Status = status
		}
	}
	return nil
}

type memTenantRepo struct {
	tenants []*model.Tenant
}

func (r *memTenantRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Tenant, error) {
	for _, t := range r.tenants {
		if t.UUID == id {
			return t, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memTenantRepo) FindByName(ctx context.Context, name string) (*model.Tenant, error) {
	for _, t := range r.tenants {
		if strings.EqualFold(t.Name, name) {
			return t, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memTenantRepo) Update(ctx context.Context, t *model.Tenant) error {
	for i, existing := range r.tenants {
		if existing.UUID == t.UUID {
			r.tenants[i] = t
			return nil
		}
	}
	return repository.ErrNotFound
}

type memUserRepo struct {
	users []*model.User
}

func (r *memUserRepo) Create(ctx context.Context, u *model.User) error {
	if u.UUID == uuid.Nil {
		u.UUID = uuid.New()
	}
	r.users = append(r.users, u)
	return nil
}

func (r *memUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	for _, u := range r.users {
		if u.UUID == id {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) ListVisibleByTenant(ctx context.Context, tenantID uuid.UUID) ([]model.User, error) {
	var out []model.User
	for _, u := range r.users {
		if u.TenantUUID == tenantID && u.IsVisible {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *memUserRepo) Update(ctx context.Context, u *model.User) error {
	for i, existing := range r.users {
		if existing.UUID == u.UUID {
			r.users[i] = u
			return nil
		}
	}
	return repository.ErrNotFound
}

type memRoomRepo struct {
	rooms []*model.StoryRoom
}

func (r *memRoomRepo) Create(ctx context.Context, s *model.StoryRoom) error {
	if s.UUID == uuid.Nil {
		s.UUID = uuid.New()
	}
	if s.Categories == "" {
		s.Categories = model.DefaultStoryCategories
	}
	r.rooms = append(r.rooms, s)
	return nil
}

func (r *memRoomRepo) FindByTenant(ctx context.Context, tenantID uuid.UUID) (*model.StoryRoom, error) {
	for _, room := range r.rooms {
		if room.TenantUUID == tenantID {
			return room, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memRoomRepo) FindEnabledByTenant(ctx context.Context, tenantID uuid.UUID) (*model.StoryRoom, error) {
	for _, room := range r.rooms {
		if room.TenantUUID == tenantID && room.Enabled {
			return room, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memRoomRepo) Update(ctx context.Context, s *model.StoryRoom) error {
	for i, existing := range r.rooms {
		if existing.UUID == s.UUID {
			r.rooms[i] = s
			return nil
		}
	}
	return repository.ErrNotFound
}

// fakeConverter records calls and serves canned bytes per format
type fakeConverter struct {
	pdfCalls int
	pptCalls int
	docCalls int
	err      error
}

func (f *fakeConverter) HTMLToPDF(ctx context.Context, sourceURL string) ([]byte, error) {
	f.pdfCalls++
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF " + sourceURL), nil
}

func (f *fakeConverter) HTMLToPPT(ctx context.Context, pathName, htmlName, templateFile string) ([]byte, error) {
	f.pptCalls++
	if f.err != nil {
		return nil, f.err
	}
	return []byte("PPTX " + templateFile), nil
}

func (f *fakeConverter) HTMLToDOC(ctx context.Context, pathName, htmlName string) ([]byte, error) {
	f.docCalls++
	if f.err != nil {
		return nil, f.err
	}
	return []byte("DOCX " + pathName + "/" + htmlName), nil
}

// fakeExchanger returns a fixed token result and records inputs
type fakeExchanger struct {
	calls  int
	creds  *oauth.Credentials
	result *oauth.TokenResult
	err    error
}

func (f *fakeExchanger) RefreshToken(ctx context.Context, source *model.DataSource, refreshToken string, creds *oauth.Credentials) (*oauth.TokenResult, error) {
	f.calls++
	f.creds = creds
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

// fakeNewsProvider serves fixed articles and records call counts
type fakeNewsProvider struct {
	calls    int
	articles []news.Article
	err      error
}

func (f *fakeNewsProvider) Search(ctx context.Context, location, topics string) ([]news.Article, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.articles, nil
}

// fakeVerifier returns a fixed verification result
type fakeVerifier struct {
	result recaptcha.Result
}

func (f *fakeVerifier) Verify(ctx context.Context, token string) (*recaptcha.Result, error) {
	r := f.result
	return &r, nil
}

// fakePaymentProvider records checkout params and metadata updates
type fakePaymentProvider struct {
	lastParams      payment.CheckoutParams
	session         payment.CheckoutSession
	cancelStatus    string
	metadataUpdates map[string]map[string]string
}

func (f *fakePaymentProvider) CreateCheckoutSession(ctx context.Context, params payment.CheckoutParams) (*payment.CheckoutSession, error) {
	f.lastParams = params
	s := f.session
	return &s, nil
}

func (f *fakePaymentProvider) GetCheckoutSession(ctx context.Context, id string) (*payment.CheckoutSession, error) {
	s := f.session
	s.ID = id
	return &s, nil
}

func (f *fakePaymentProvider) CancelSubscription(ctx context.Context, id string) (string, error) {
	return f.cancelStatus, nil
}

func (f *fakePaymentProvider) UpdateSubscriptionMetadata(ctx context.Context, id string, metadata map[string]string) error {
	if f.metadataUpdates == nil {
		f.metadataUpdates = make(map[string]map[string]string)
	}
	f.metadataUpdates[id] = metadata
	return nil
}
