package auth

// Claims representa la información extraída del token.
// Role es informativo: la autorización se resuelve contra el roster.
type Claims struct {
	UserID string
	Email  string
	Role   string
}
