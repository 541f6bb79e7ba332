package privy

// AllowlistRuleName 返回允许给定代币的规则名称。
// 这是插件在策略中识别自建规则的唯一约定。
func AllowlistRuleName(tokenName string) string {
	return "Allowlist " + tokenName
}

// Allowlist 基于策略快照计算"放行代币 tokenAddress"之后的可编辑字段。
// 新规则追加到第一个 MethodRule 的规则列表末尾，既有规则原序保留。
// 不去重：对同一地址重复调用会产生两条条件相同的规则。
// 策略没有任何 MethodRule 时原样返回，不创建规则列表。
func Allowlist(policy Policy, tokenName, tokenAddress string) PolicyUpdate {
	update := PolicyUpdate{
		Name:        policy.Name,
		MethodRules: cloneMethodRules(policy.MethodRules),
	}
	if len(update.MethodRules) == 0 {
		return update
	}

	rule := Rule{
		Name: AllowlistRuleName(tokenName),
		Conditions: []Condition{
			{
				FieldSource: FieldSourceEthereumTransaction,
				Field:       FieldTo,
				Operator:    OperatorEq,
				Value:       tokenAddress,
			},
		},
		Action: ActionAllow,
	}
	update.MethodRules[0].Rules = append(update.MethodRules[0].Rules, rule)
	return update
}

// Denylist 基于策略快照计算"移除代币 tokenAddress 放行规则"之后的可编辑字段。
// 第一个 MethodRule 中，任何含有命中该地址条件的规则都会被移除，
// 匹配只看地址，tokenName 不参与（规则名不检查）。其余规则原序保留。
func Denylist(policy Policy, tokenName, tokenAddress string) PolicyUpdate {
	_ = tokenName

	update := PolicyUpdate{
		Name:        policy.Name,
		MethodRules: cloneMethodRules(policy.MethodRules),
	}
	if len(update.MethodRules) == 0 {
		return update
	}

	existing := update.MethodRules[0].Rules
	kept := make([]Rule, 0, len(existing))
	for _, rule := range existing {
		if !ruleMatchesAddress(rule, tokenAddress) {
			kept = append(kept, rule)
		}
	}
	update.MethodRules[0].Rules = kept
	return update
}

// ruleMatchesAddress 判断规则是否含有针对给定地址的 to 等值条件。
func ruleMatchesAddress(rule Rule, tokenAddress string) bool {
	for _, cond := range rule.Conditions {
		if cond.FieldSource == FieldSourceEthereumTransaction &&
			cond.Field == FieldTo &&
			cond.Value == tokenAddress {
			return true
		}
	}
	return false
}

// cloneMethodRules 深拷贝 MethodRule 列表，保证编辑不污染传入的快照。
func cloneMethodRules(rules []MethodRule) []MethodRule {
	if rules == nil {
		return nil
	}
	cloned := make([]MethodRule, len(rules))
	for i, mr := range rules {
		cloned[i] = MethodRule{Method: mr.Method}
		if mr.Rules != nil {
			cloned[i].Rules = make([]Rule, len(mr.Rules))
			copy(cloned[i].Rules, mr.Rules)
		}
	}
	return cloned
}
