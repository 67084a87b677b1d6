package mockapi

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"admin-console/internal/domain"
)

const timeLayout = "2006-01-02 15:04:05"

type accountRecord struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	DisplayName  string `json:"displayName"`
	Enabled      bool   `json:"enabled"`
	CreatedAt    string `json:"createdAt"`
	passwordHash string
}

type planRecord struct {
	ID             int64           `json:"id"`
	PlanCode       string          `json:"planCode"`
	Type           domain.PlanType `json:"type"`
	Name           string          `json:"name"`
	PriceCents     int64           `json:"priceCents"`
	DurationDays   int             `json:"durationDays"`
	Seats          int             `json:"seats"`
	PointsIncluded int64           `json:"pointsIncluded"`
	BonusPoints    int64           `json:"bonusPoints"`
	Enabled        bool            `json:"enabled"`
	Description    string          `json:"description"`
	FeaturesJSON   string          `json:"featuresJson"`
}

// state es la base en memoria del backend simulado.
type state struct {
	mu        sync.RWMutex
	nextID    int64
	accounts  map[int64]*accountRecord
	plans     map[int64]*planRecord
	templates map[string]*domain.PromptTemplate
	payments  map[domain.PaymentMethod]domain.PaymentConfig
	users     []domain.UserAccount
	members   []domain.Member
	points    []domain.PointsTransaction
}

func newState() *state {
	return &state{
		nextID:    100,
		accounts:  make(map[int64]*accountRecord),
		plans:     make(map[int64]*planRecord),
		templates: make(map[string]*domain.PromptTemplate),
		payments:  make(map[domain.PaymentMethod]domain.PaymentConfig),
	}
}

// id devuelve el siguiente identificador; requiere mu tomado.
func (s *state) id() int64 {
	s.nextID++
	return s.nextID
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// seed carga los datos iniciales de desarrollo.
func (s *state) seed(adminPassword string, now time.Time) error {
	hash, err := hashPassword(adminPassword)
	if err != nil {
		return err
	}
	created := now.Add(-72 * time.Hour).Format(timeLayout)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts[1] = &accountRecord{
		ID:           1,
		Username:     "admin",
		DisplayName:  "超级管理员",
		Enabled:      true,
		CreatedAt:    created,
		passwordHash: hash,
	}
	s.plans[11] = &planRecord{
		ID:           11,
		PlanCode:     "PRO_MONTHLY",
		Type:         domain.PlanTypeSubscription,
		Name:         "专业版月卡",
		PriceCents:   2900,
		DurationDays: 30,
		Seats:        1,
		BonusPoints:  200,
		Enabled:      true,
		FeaturesJSON: `["高清导出","优先队列"]`,
	}
	s.plans[12] = &planRecord{
		ID:             12,
		PlanCode:       "POINTS_1000",
		Type:           domain.PlanTypePoints,
		Name:           "1000 积分包",
		PriceCents:     990,
		PointsIncluded: 1000,
		Enabled:        true,
		FeaturesJSON:   `{"highlights":["永久有效"]}`,
	}
	tplID := uuid.NewString()
	s.templates[tplID] = &domain.PromptTemplate{
		ID:        domain.ID(tplID),
		Name:      "默认客服",
		Content:   "你是一名耐心的客服助手。",
		UpdatedAt: created,
	}
	s.users = []domain.UserAccount{
		{ID: "1001", Nickname: "alice", Email: "alice@example.com", Role: "USER", Status: "ACTIVE", CreatedAt: created},
		{ID: "1002", Nickname: "bob", Phone: "13800000000", Role: "USER", Status: "ACTIVE", CreatedAt: created},
		{ID: "1003", Nickname: "carol", Email: "carol@example.com", Role: "USER", Status: "DISABLED", CreatedAt: created},
	}
	s.members = []domain.Member{
		{ID: "2001", UserID: "1001", Nickname: "alice", PlanCode: "PRO_MONTHLY", PlanName: "专业版月卡", ValidUntil: now.AddDate(0, 0, 20).Format("2006-01-02"), Status: "ACTIVE"},
		{ID: "2002", UserID: "1003", Nickname: "carol", PlanCode: "PRO_MONTHLY", PlanName: "专业版月卡", ValidUntil: now.AddDate(0, 0, -3).Format("2006-01-02"), Status: "EXPIRED"},
	}
	today := now.Format(timeLayout)
	s.points = []domain.PointsTransaction{
		{ID: "3001", UserID: "1001", Nickname: "alice", Type: domain.PointsEarn, Amount: 1000, Reason: "购买积分包", CreatedAt: created},
		{ID: "3002", UserID: "1001", Nickname: "alice", Type: domain.PointsSpend, Amount: 120, Reason: "生成报告", CreatedAt: created},
		{ID: "3003", UserID: "1002", Nickname: "bob", Type: domain.PointsEarn, Amount: 200, Reason: "会员赠送", CreatedAt: today},
		{ID: "3004", UserID: "1002", Nickname: "bob", Type: domain.PointsSpend, Amount: 50, Reason: "生成报告", CreatedAt: today},
	}
	return nil
}

func (s *state) accountByUsername(username string) (*accountRecord, bool) {
	for _, a := range s.accounts {
		if strings.EqualFold(a.Username, username) {
			return a, true
		}
	}
	return nil, false
}

func (s *state) planByCode(code string) (*planRecord, bool) {
	for _, p := range s.plans {
		if strings.EqualFold(p.PlanCode, code) {
			return p, true
		}
	}
	return nil, false
}

func sortedAccounts(m map[int64]*accountRecord) []accountRecord {
	out := make([]accountRecord, 0, len(m))
	for _, a := range m {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func sortedPlans(m map[int64]*planRecord) []planRecord {
	out := make([]planRecord, 0, len(m))
	for _, p := range m {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func sortedTemplates(m map[string]*domain.PromptTemplate) []domain.PromptTemplate {
	out := make([]domain.PromptTemplate, 0, len(m))
	for _, t := range m {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt != out[j].UpdatedAt {
			return out[i].UpdatedAt > out[j].UpdatedAt
		}
		return out[i].ID < out[j].ID
	})
	return out
}
