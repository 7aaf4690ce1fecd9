package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"finco/models"

	"github.com/golang-jwt/jwt/v5"
)

// AuthMiddleware проверяет JWT токен и кладет данные сотрудника в контекст
func AuthMiddleware(jwtKey []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Получаем токен из заголовка
			tokenString := r.Header.Get("Authorization")
			if tokenString == "" {
				http.Error(w, "Authorization header is required", http.StatusUnauthorized)
				return
			}

			// Убираем префикс "Bearer " если он есть
			if len(tokenString) > 7 && tokenString[:7] == "Bearer " {
				tokenString = tokenString[7:]
			}

			// Парсим и проверяем токен
			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
				}
				return jwtKey, nil
			})

			if err != nil {
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			// Проверяем claims
			if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
				employeeID, ok := claims["employee_id"].(float64)
				if !ok {
					http.Error(w, "Invalid employee_id in token", http.StatusUnauthorized)
					return
				}
				companyID, ok := claims["company_id"].(float64)
				if !ok {
					http.Error(w, "Invalid company_id in token", http.StatusUnauthorized)
					return
				}
				role, ok := claims["role"].(string)
				if !ok {
					http.Error(w, "Invalid role in token", http.StatusUnauthorized)
					return
				}

				// Добавляем заголовок X-Employee-ID
				r.Header.Set("X-Employee-ID", strconv.FormatUint(uint64(employeeID), 10))

				// Добавляем информацию о сотруднике в контекст запроса
				ctx := r.Context()
				ctx = context.WithValue(ctx, "employee_id", uint(employeeID))
				ctx = context.WithValue(ctx, "company_id", uint(companyID))
				ctx = context.WithValue(ctx, "role", role)
				r = r.WithContext(ctx)
			} else {
				http.Error(w, "Invalid token claims", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireManager пропускает только сотрудников с ролью manager
func RequireManager(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, ok := r.Context().Value("role").(string)
		if !ok || role != string(models.RoleManager) {
			http.Error(w, "Manager role is required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetEmployeeFromContext получает информацию о сотруднике из контекста
func GetEmployeeFromContext(r *http.Request) (uint, uint, error) {
	employeeID, ok := r.Context().Value("employee_id").(uint)
	if !ok {
		return 0, 0, fmt.Errorf("employee_id not found in context")
	}

	companyID, ok := r.Context().Value("company_id").(uint)
	if !ok {
		return 0, 0, fmt.Errorf("company_id not found in context")
	}

	return employeeID, companyID, nil
}
