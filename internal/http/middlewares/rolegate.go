package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/okoro-dev/realtyhub/internal/domain/account"
)

type routeKey struct {
	method string
	route  string
}

type groupRule struct {
	prefix string
	roles  []account.Role
}

// Gate holds the role requirements for the whole API as an explicit
// table built while the router is assembled. Requirements are read-only
// once serving starts. A route with no entry (neither handler-level nor
// group-level) is public; handler-level entries override group
// defaults.
type Gate struct {
	resolver *IdentityResolver
	handler  map[routeKey][]account.Role
	groups   []groupRule
}

func NewGate(resolver *IdentityResolver) *Gate {
	return &Gate{
		resolver: resolver,
		handler:  make(map[routeKey][]account.Role),
	}
}

// Require declares the allowed roles for one route. The route string is
// the gin template ("/home/:id"), not a concrete path.
func (g *Gate) Require(method, route string, roles ...account.Role) {
	g.handler[routeKey{method: method, route: route}] = roles
}

// RequireGroup declares a default role set for every route under a path
// prefix. A handler-level Require on a route inside the group wins.
func (g *Gate) RequireGroup(prefix string, roles ...account.Role) {
	prefix = strings.TrimSuffix(prefix, "/")
	g.groups = append(g.groups, groupRule{prefix: prefix, roles: roles})
}

// requirement resolves handler override > longest group prefix > none.
func (g *Gate) requirement(method, route string) ([]account.Role, bool) {
	if roles, ok := g.handler[routeKey{method: method, route: route}]; ok {
		return roles, true
	}

	var best *groupRule

	for i := range g.groups {
		rule := &g.groups[i]

		if !routeInGroup(route, rule.prefix) {
			continue
		}

		if best == nil || len(rule.prefix) > len(best.prefix) {
			best = rule
		}
	}

	if best != nil {
		return best.roles, true
	}

	return nil, false
}

// Middleware runs the decision procedure on every request:
// no requirement -> allow (a supplied token changes nothing);
// requirement without a resolvable identity -> 401;
// identity whose stored role is outside the set -> 403;
// otherwise allow, with the identity stashed for the handler.
func (g *Gate) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		route := ctx.FullPath()

		if route == "" {
			// unmatched routes 404 downstream; nothing to gate
			ctx.Next()
			return
		}

		roles, declared := g.requirement(ctx.Request.Method, route)

		if !declared {
			ctx.Next()
			return
		}

		identity, ok := g.resolver.Resolve(ctx)

		if !ok {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "unauthorized",
					"message": "Missing or invalid credential",
				},
			})
			return
		}

		if !roleAllowed(identity.Role, roles) {
			ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{
					"code":    "forbidden",
					"message": "Insufficient role",
				},
			})
			return
		}

		ctx.Set(CtxIdentity, identity)

		ctx.Next()
	}
}

// routeInGroup matches on path segments: "/admin" covers "/admin" and
// "/admin/panel" but not "/administrator".
func routeInGroup(route, prefix string) bool {
	if !strings.HasPrefix(route, prefix) {
		return false
	}

	return len(route) == len(prefix) || route[len(prefix)] == '/'
}

func roleAllowed(role account.Role, allowed []account.Role) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}

	return false
}
