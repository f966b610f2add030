package sandbox

import "github.com/mazenolama/Aljabr-Task/internal/model"

// Account is a seed login.
type Account struct {
	Name     string
	Email    string
	Password string
	Role     model.Role
}

// Seed registers accounts, skipping empty emails.
func Seed(s *Store, accounts ...Account) ([]model.User, error) {
	var out []model.User
	for _, a := range accounts {
		if a.Email == "" {
			continue
		}
		u, err := s.AddUser(a.Name, a.Email, a.Password, a.Role)
		if err != nil {
			return out, err
		}
		out = append(out, u)
	}
	return out, nil
}
