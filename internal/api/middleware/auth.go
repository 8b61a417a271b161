package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/makerhive/access-system/internal/core/domain"
)

// ActorKey is the echo context key under which the authenticated actor is
// stored.
const ActorKey = "actor"

// OnBehalfOfHeader names the header a device controller sets to assert which
// member is currently authenticated at it. Controllers are provisioned
// hardware and trusted to report this truthfully.
const OnBehalfOfHeader = "X-On-Behalf-Of"

// Auth validates the bearer JWT and injects the resulting domain actor into
// the request context.
func Auth(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims := jwt.MapClaims{}
			tkn, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
				if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
					return nil, jwt.ErrTokenSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !tkn.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			actor, err := actorFromClaims(claims, c.Request().Header.Get(OnBehalfOfHeader))
			if err != nil {
				return err
			}

			c.Set(ActorKey, actor)
			return next(c)
		}
	}
}

// actorFromClaims reconstructs the domain actor a token was issued for. User
// tokens carry is_admin and the qualification sets; device tokens carry
// role=device and may act on behalf of the member named in the request header.
func actorFromClaims(claims jwt.MapClaims, onBehalfOf string) (domain.Actor, error) {
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "token missing subject")
	}

	if role, _ := claims["role"].(string); role == "device" {
		actor := domain.DeviceActor{DeviceID: sub}
		if onBehalfOf != "" {
			actor.OnBehalfOf = &domain.Member{UserID: onBehalfOf}
		}
		return actor, nil
	}

	if isAdmin, _ := claims["is_admin"].(bool); isAdmin {
		return domain.Admin{UserID: sub}, nil
	}

	memberQuals := claimSet(claims, "member_qualifications")
	instructorQuals := claimSet(claims, "instructor_qualifications")

	if len(instructorQuals) > 0 {
		return domain.Instructor{
			UserID:                   sub,
			MemberQualifications:     memberQuals,
			InstructorQualifications: instructorQuals,
		}, nil
	}

	return domain.Member{UserID: sub, MemberQualifications: memberQuals}, nil
}

// claimSet reads a string-array claim into a set. JWT decoding yields
// []interface{}, so each element is asserted individually.
func claimSet(claims jwt.MapClaims, key string) map[string]struct{} {
	raw, _ := claims[key].([]interface{})
	set := make(map[string]struct{}, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			set[s] = struct{}{}
		}
	}
	return set
}
