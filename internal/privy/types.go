package privy

// ChainType 标识策略或钱包所属的链。
type ChainType string

const (
	ChainEthereum ChainType = "ethereum"
	ChainSolana   ChainType = "solana"
	ChainMonad    ChainType = "monad"
)

// RuleAction 表示规则命中后的处理结果。
type RuleAction string

const (
	ActionAllow RuleAction = "ALLOW"
	ActionDeny  RuleAction = "DENY"
)

// Method 表示策略所约束的钱包操作类型。
type Method string

const (
	MethodEthSendTransaction Method = "eth_sendTransaction"
	MethodEthSignTransaction Method = "eth_signTransaction"
	MethodPersonalSign       Method = "personal_sign"
	MethodSignTypedData      Method = "eth_signTypedData_v4"
)

// 本插件构造的条件只使用这一种形态：以太坊交易的 to 字段等值匹配。
const (
	FieldSourceEthereumTransaction = "ethereum_transaction"
	FieldTo                        = "to"
	OperatorEq                     = "eq"
)

// Condition 描述对交易/请求某个字段的一次比较。
type Condition struct {
	FieldSource string `json:"field_source"`
	Field       string `json:"field"`
	Operator    string `json:"operator"`
	Value       string `json:"value"`
}

// Rule 是一个具名判定：全部条件命中时产生 ALLOW/DENY 结论。
// 名称约定为 "Allowlist <token>"，这是本插件再次定位规则的唯一线索。
type Rule struct {
	Name       string      `json:"name"`
	Conditions []Condition `json:"conditions"`
	Action     RuleAction  `json:"action"`
}

// MethodRule 将规则集合限定到某一种钱包操作。
// 规则顺序有意义：远端引擎按序匹配，本插件只追加或删除，不重排。
type MethodRule struct {
	Method Method `json:"method"`
	Rules  []Rule `json:"rules"`
}

// Policy 是远端持有的策略资源，本地仅在单次编辑期间持有快照。
type Policy struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	ChainType     ChainType    `json:"chain_type"`
	MethodRules   []MethodRule `json:"method_rules"`
	DefaultAction RuleAction   `json:"default_action"`
	CreatedAt     int64        `json:"created_at,omitempty"`
}

// PolicyUpdate 是 PATCH 策略时允许修改的字段子集。
type PolicyUpdate struct {
	Name        string       `json:"name"`
	MethodRules []MethodRule `json:"method_rules"`
}

// Wallet 是远端托管的钱包资源。
type Wallet struct {
	ID        string    `json:"id"`
	Address   string    `json:"address"`
	ChainType ChainType `json:"chain_type"`
	PolicyIDs []string  `json:"policy_ids"`
	CreatedAt int64     `json:"created_at,omitempty"`
}

// TransactionResult 是发送交易后远端返回的回执摘要。
type TransactionResult struct {
	Hash   string `json:"hash"`
	CAIP2  string `json:"caip2,omitempty"`
	Method string `json:"method,omitempty"`
}

// SignatureResult 是消息签名的返回结果。
type SignatureResult struct {
	Signature string `json:"signature"`
	Encoding  string `json:"encoding,omitempty"`
}
