// exposes a Store interface that is passed to API controllers
package db

import (
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/kubagp1/school-clock/internal/model"
	"github.com/kubagp1/school-clock/internal/rules"
	"github.com/kubagp1/school-clock/internal/theme"
)

type Store interface {
	// user functions
	CreateUser(email, hashedPassword string, name *string) (int, error)
	GetUserByEmail(email string) (*model.User, error)
	GetUserByID(id int) (*model.User, error)
	UpdateUserProfile(id int, email string, name *string) error

	// theme functions
	CreateTheme(name string, createdBy int, internal bool, fields []theme.Field) (model.Theme, error)
	GetThemeByID(id int) (model.Theme, error)
	ListThemes(ownerID int) ([]model.Theme, error)
	RenameTheme(id int, name string) error
	SetThemeFields(id int, fields []theme.Field) error
	DeleteTheme(id int) error
	ConfigurationIDsByTheme(themeID int) ([]int, error)

	// configuration functions
	CreateConfiguration(name string, baseThemeID, createdBy int) (model.Configuration, error)
	GetConfigurationByID(id int) (model.Configuration, error)
	ListConfigurations(ownerID int) ([]model.Configuration, error)
	RenameConfiguration(id int, name string) error
	SetBaseTheme(id, baseThemeID int) error
	DeleteConfiguration(id int) error

	// rule functions
	CreateRule(configurationID int, name string, themeID int) (model.Rule, error)
	GetRuleByID(id int) (model.Rule, error)
	ListRules(configurationID int, internalGroup *string) ([]model.Rule, error)
	UpdateRule(id int, name string, enabled bool, themeID int) error
	UpdateRuleCondition(id int, condition json.RawMessage) error
	ReorderRules(configurationID int, requested []rules.Entry) error
	NextRuleIndex(configurationID int, internalGroup *string) (int, error)
	DeleteRule(id int) error

	// news ticker functions
	ListNewsTickerRules(configurationID int) ([]model.Rule, error)
	ReplaceNewsTicker(configurationID int, replaceRuleID *int, condition json.RawMessage, fields []theme.Field) (model.Rule, error)
	DeleteNewsTicker(ruleID int) error

	// instance functions
	CreateInstance(configurationID int, name string) (model.Instance, error)
	GetInstanceByID(id int) (model.Instance, error)
	GetInstanceBySecret(secret string) (model.Instance, error)
	ListInstances(ownerID int) ([]model.Instance, error)
	ListInstancesByConfiguration(configurationID int) ([]model.Instance, error)
	RenameInstance(id int, name string) error
	SetInstanceSecret(id int, secret string) error
	TouchInstance(id int, seenAt time.Time) error
	DeleteInstance(id int) error

	// ownership lookups used by the admin API before any mutation
	ConfigurationOwner(id int) (int, error)
	RuleOwner(id int) (int, error)
	InstanceOwner(id int) (int, error)
}

type pgStore struct {
	db *sqlx.DB
}

// compile-time check that pgStore implements Store
var _ Store = (*pgStore)(nil)

func NewStore(database *sqlx.DB) Store {
	if database == nil {
		database = DB
	}
	return &pgStore{db: database}
}
