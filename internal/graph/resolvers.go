package graph

import (
	"github.com/graphql-go/graphql"

	"github.com/titanbank/backend/internal/middleware"
	"github.com/titanbank/backend/internal/models"
	"github.com/titanbank/backend/internal/services"
)

// Resolver binds the schema's operations to the service layer.
type Resolver struct {
	Auth     *services.AuthService
	Wallet   *services.WalletService
	Deposits *services.FixedDepositService
	Tickets  *services.TicketService
	Notify   *services.NotifyService
}

// principal returns the authenticated user id or ErrNotAuthenticated.
// Authorization happens here, per operation, never at the transport layer.
func principal(p graphql.ResolveParams) (int, error) {
	userID, ok := middleware.UserID(p.Context)
	if !ok {
		return 0, models.ErrNotAuthenticated
	}
	return userID, nil
}

func (r *Resolver) queryType() *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"me": &graphql.Field{
				Type: userType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					userID, err := principal(p)
					if err != nil {
						return nil, err
					}
					return r.Auth.GetUserByID(p.Context, userID)
				},
			},
			"myTransactions": &graphql.Field{
				Type: graphql.NewList(transactionType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					userID, err := principal(p)
					if err != nil {
						return nil, err
					}
					return r.Wallet.Transactions(p.Context, userID)
				},
			},
			"myFixedDeposits": &graphql.Field{
				Type: graphql.NewList(fixedDepositType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					userID, err := principal(p)
					if err != nil {
						return nil, err
					}
					return r.Deposits.List(p.Context, userID)
				},
			},
			"myTickets": &graphql.Field{
				Type: graphql.NewList(ticketType),
				Args: graphql.FieldConfigArgument{
					"status": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					userID, err := principal(p)
					if err != nil {
						return nil, err
					}
					status, _ := p.Args["status"].(string)
					return r.Tickets.List(p.Context, userID, status)
				},
			},
		},
	})
}

func (r *Resolver) mutationType() *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"registerUser": &graphql.Field{
				Type: userType,
				Args: graphql.FieldConfigArgument{
					"name":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"email":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"password": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.Auth.Register(p.Context, services.RegisterRequest{
						Name:     p.Args["name"].(string),
						Email:    p.Args["email"].(string),
						Password: p.Args["password"].(string),
					})
				},
			},
			"login": &graphql.Field{
				Type: otpChallengeType,
				Args: graphql.FieldConfigArgument{
					"email":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"password": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.Auth.Login(p.Context, services.LoginRequest{
						Email:    p.Args["email"].(string),
						Password: p.Args["password"].(string),
					})
				},
			},
			"verifyOtp": &graphql.Field{
				Type: authPayloadType,
				Args: graphql.FieldConfigArgument{
					"email": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"otp":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.Auth.VerifyOTP(p.Context, services.VerifyOTPRequest{
						Email: p.Args["email"].(string),
						OTP:   p.Args["otp"].(string),
					})
				},
			},
			"signInWithGoogle": &graphql.Field{
				Type: authPayloadType,
				Args: graphql.FieldConfigArgument{
					"googleCode": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.Auth.SignInWithGoogle(p.Context, p.Args["googleCode"].(string))
				},
			},
			"deposit": &graphql.Field{
				Type: userType,
				Args: graphql.FieldConfigArgument{
					"amount":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"currency": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					userID, err := principal(p)
					if err != nil {
						return nil, err
					}
					return r.Wallet.Deposit(p.Context, userID, services.DepositRequest{
						Amount:   p.Args["amount"].(float64),
						Currency: p.Args["currency"].(string),
					})
				},
			},
			"redeemGiftCard": &graphql.Field{
				Type: userType,
				Args: graphql.FieldConfigArgument{
					"code": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					userID, err := principal(p)
					if err != nil {
						return nil, err
					}
					return r.Wallet.RedeemGiftCard(p.Context, userID, services.RedeemRequest{
						Code: p.Args["code"].(string),
					})
				},
			},
			"applyFixedDeposit": &graphql.Field{
				Type: fixedDepositType,
				Args: graphql.FieldConfigArgument{
					"plan":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"currency": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"amount":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					userID, err := principal(p)
					if err != nil {
						return nil, err
					}
					return r.Deposits.Apply(p.Context, userID, services.ApplyRequest{
						Plan:     p.Args["plan"].(string),
						Currency: p.Args["currency"].(string),
						Amount:   p.Args["amount"].(float64),
					})
				},
			},
			"createTicket": &graphql.Field{
				Type: ticketType,
				Args: graphql.FieldConfigArgument{
					"subject": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"message": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					userID, err := principal(p)
					if err != nil {
						return nil, err
					}
					return r.Tickets.Create(p.Context, userID, services.CreateTicketRequest{
						Subject: p.Args["subject"].(string),
						Message: p.Args["message"].(string),
					})
				},
			},
			"triggerTestNotification": &graphql.Field{
				Type: graphql.String,
				Args: graphql.FieldConfigArgument{
					"message": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if err := r.Notify.Publish(p.Context, p.Args["message"].(string)); err != nil {
						return nil, err
					}
					return "Notification sent!", nil
				},
			},
		},
	})
}
