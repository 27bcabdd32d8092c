// internal/service/booking/infrastructure/rule/cel_policy.go
package rule

import (
	"context"

	"voyago/internal/pkg/apperr"
	"voyago/internal/service/booking/domain/port"

	"github.com/google/cel-go/cel"
	pkgerrors "github.com/pkg/errors"
)

// CELPolicy 把配置里的资格规则编译成 CEL 程序，在任何预留副作用
// 之前求值。每条规则必须返回 bool，返回 false 即拒绝请求。
//
// 可用变量：passengers、rooms、nights、has_flight、has_hotel。
// 规则示例：`passengers <= 9`、`!has_hotel || nights <= 30`。
type CELPolicy struct {
	rules []compiledRule
}

type compiledRule struct {
	expr string
	prg  cel.Program
}

// NewCELPolicy 编译全部规则；任何一条编译失败都让启动失败，
// 规则错误必须在上线前暴露。
func NewCELPolicy(exprs []string) (*CELPolicy, error) {
	env, err := cel.NewEnv(
		cel.Variable("passengers", cel.IntType),
		cel.Variable("rooms", cel.IntType),
		cel.Variable("nights", cel.IntType),
		cel.Variable("has_flight", cel.BoolType),
		cel.Variable("has_hotel", cel.BoolType),
	)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "create cel env")
	}

	rules := make([]compiledRule, 0, len(exprs))
	for _, expr := range exprs {
		ast, iss := env.Compile(expr)
		if iss != nil && iss.Err() != nil {
			return nil, pkgerrors.Wrapf(iss.Err(), "compile booking policy %q", expr)
		}
		if ast.OutputType() != cel.BoolType {
			return nil, pkgerrors.Errorf("booking policy %q must evaluate to bool", expr)
		}
		prg, err := env.Program(ast)
		if err != nil {
			return nil, pkgerrors.Wrapf(err, "build program for policy %q", expr)
		}
		rules = append(rules, compiledRule{expr: expr, prg: prg})
	}
	return &CELPolicy{rules: rules}, nil
}

func (p *CELPolicy) Validate(_ context.Context, in port.PolicyInput) error {
	vars := map[string]interface{}{
		"passengers": in.Passengers,
		"rooms":      in.Rooms,
		"nights":     in.Nights,
		"has_flight": in.HasFlight,
		"has_hotel":  in.HasHotel,
	}
	for _, rule := range p.rules {
		out, _, err := rule.prg.Eval(vars)
		if err != nil {
			return pkgerrors.Wrapf(err, "evaluate booking policy %q", rule.expr)
		}
		if pass, ok := out.Value().(bool); !ok || !pass {
			return apperr.Newf(apperr.KindValidation, apperr.CodeValidation,
				"booking rejected by policy: %s", rule.expr)
		}
	}
	return nil
}
