package panel

import (
	"fmt"
	"strconv"
	"time"
)

// UserStatus is the lifecycle state of a proxy user account.
type UserStatus string

const (
	UserActive   UserStatus = "active"
	UserDisabled UserStatus = "disabled"
	UserLimited  UserStatus = "limited"
	UserExpired  UserStatus = "expired"
	UserOnHold   UserStatus = "on_hold"
)

// NodeStatus is the connection state of a backend node.
type NodeStatus string

const (
	NodeConnected  NodeStatus = "connected"
	NodeConnecting NodeStatus = "connecting"
	NodeError      NodeStatus = "error"
	NodeDisabled   NodeStatus = "disabled"
)

// User is a proxy account managed by the panel.
type User struct {
	Username     string     `json:"username" yaml:"username"`
	Status       UserStatus `json:"status" yaml:"status"`
	UsedTraffic  int64      `json:"used_traffic" yaml:"used_traffic"`
	DataLimit    int64      `json:"data_limit" yaml:"data_limit"`
	Expire       *time.Time `json:"expire,omitempty" yaml:"expire,omitempty"`
	Note         string     `json:"note,omitempty" yaml:"note,omitempty"`
	OnlineAt     *time.Time `json:"online_at,omitempty" yaml:"online_at,omitempty"`
	SubURL       string     `json:"subscription_url,omitempty" yaml:"subscription_url,omitempty"`
	GroupIDs     []int      `json:"group_ids,omitempty" yaml:"group_ids,omitempty"`
	AdminID      int        `json:"admin_id,omitempty" yaml:"admin_id,omitempty"`
	SubRevokedAt *time.Time `json:"sub_revoked_at,omitempty" yaml:"sub_revoked_at,omitempty"`
}

// EntityID returns the stable identity used by table rows.
func (u User) EntityID() string { return u.Username }

// Admin is a panel administrator account.
type Admin struct {
	ID           int    `json:"id" yaml:"id"`
	Username     string `json:"username" yaml:"username"`
	IsSudo       bool   `json:"is_sudo" yaml:"is_sudo"`
	IsDisabled   bool   `json:"is_disabled" yaml:"is_disabled"`
	TelegramID   int64  `json:"telegram_id,omitempty" yaml:"telegram_id,omitempty"`
	UsedTraffic  int64  `json:"used_traffic" yaml:"used_traffic"`
	TotalUsers   int    `json:"total_users,omitempty" yaml:"total_users,omitempty"`
	DiscordHook  string `json:"discord_webhook,omitempty" yaml:"discord_webhook,omitempty"`
	SubTemplate  string `json:"sub_template,omitempty" yaml:"sub_template,omitempty"`
	SupportURL   string `json:"support_url,omitempty" yaml:"support_url,omitempty"`
	ProfileTitle string `json:"profile_title,omitempty" yaml:"profile_title,omitempty"`
}

func (a Admin) EntityID() string { return strconv.Itoa(a.ID) }

// Node is a backend server the panel relays traffic through.
type Node struct {
	ID               int        `json:"id" yaml:"id"`
	Name             string     `json:"name" yaml:"name"`
	Address          string     `json:"address" yaml:"address"`
	Port             int        `json:"port" yaml:"port"`
	APIPort          int        `json:"api_port" yaml:"api_port"`
	Status           NodeStatus `json:"status" yaml:"status"`
	UsageCoefficient float64    `json:"usage_coefficient" yaml:"usage_coefficient"`
	XrayVersion      string     `json:"xray_version,omitempty" yaml:"xray_version,omitempty"`
	NodeVersion      string     `json:"node_version,omitempty" yaml:"node_version,omitempty"`
	Message          string     `json:"message,omitempty" yaml:"message,omitempty"`
	LastStatusChange *time.Time `json:"last_status_change,omitempty" yaml:"last_status_change,omitempty"`
}

func (n Node) EntityID() string { return strconv.Itoa(n.ID) }

// Group bundles inbound tags that can be assigned to users together.
type Group struct {
	ID          int      `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	InboundTags []string `json:"inbound_tags" yaml:"inbound_tags"`
	IsDisabled  bool     `json:"is_disabled" yaml:"is_disabled"`
	TotalUsers  int      `json:"total_users,omitempty" yaml:"total_users,omitempty"`
}

func (g Group) EntityID() string { return strconv.Itoa(g.ID) }

// Host is a connection endpoint advertised to subscribers. Hosts are
// ordered: the panel serves them to clients by ascending priority.
type Host struct {
	ID         int    `json:"id" yaml:"id"`
	Remark     string `json:"remark" yaml:"remark"`
	Address    string `json:"address" yaml:"address"`
	Port       int    `json:"port,omitempty" yaml:"port,omitempty"`
	InboundTag string `json:"inbound_tag" yaml:"inbound_tag"`
	SNI        string `json:"sni,omitempty" yaml:"sni,omitempty"`
	HostHeader string `json:"host,omitempty" yaml:"host,omitempty"`
	Security   string `json:"security,omitempty" yaml:"security,omitempty"`
	Priority   int    `json:"priority" yaml:"priority"`
	IsDisabled bool   `json:"is_disabled" yaml:"is_disabled"`
}

func (h Host) EntityID() string { return strconv.Itoa(h.ID) }

// FormatTraffic renders a byte count for table cells.
func FormatTraffic(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
