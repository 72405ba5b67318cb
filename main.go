package main

import "github.com/ecommerce/auth-service/cmd"

// @title                       Auth Service API
// @version                     1.0
// @description                 User registration, login, token verification and role-based access control.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the token.
func main() {
	cmd.Execute()
}
