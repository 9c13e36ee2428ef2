package graph

import (
	"github.com/graphql-go/graphql"

	"github.com/titanbank/backend/internal/models"
	"github.com/titanbank/backend/internal/services"
)

// Object types mirror the client's schema. Field resolvers are explicit so
// decimal amounts serialize as floats and ints as IDs without reflection
// surprises.

var balanceType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Balance",
	Fields: graphql.Fields{
		"currency": &graphql.Field{
			Type: graphql.NewNonNull(graphql.String),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(models.Balance).Currency, nil
			},
		},
		"amount": &graphql.Field{
			Type: graphql.NewNonNull(graphql.Float),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(models.Balance).Amount.InexactFloat64(), nil
			},
		},
	},
})

var userType = graphql.NewObject(graphql.ObjectConfig{
	Name: "User",
	Fields: graphql.Fields{
		"id": &graphql.Field{
			Type: graphql.NewNonNull(graphql.ID),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(*models.User).ID, nil
			},
		},
		"email": &graphql.Field{
			Type: graphql.NewNonNull(graphql.String),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(*models.User).Email, nil
			},
		},
		"name": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(*models.User).Name, nil
			},
		},
		"accountNumber": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(*models.User).AccountNumber, nil
			},
		},
		"balances": &graphql.Field{
			Type: graphql.NewList(balanceType),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(*models.User).Balances, nil
			},
		},
	},
})

var authPayloadType = graphql.NewObject(graphql.ObjectConfig{
	Name: "AuthPayload",
	Fields: graphql.Fields{
		"token": &graphql.Field{
			Type: graphql.NewNonNull(graphql.String),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(*services.AuthPayload).Token, nil
			},
		},
		"user": &graphql.Field{
			Type: graphql.NewNonNull(userType),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(*services.AuthPayload).User, nil
			},
		},
	},
})

var otpChallengeType = graphql.NewObject(graphql.ObjectConfig{
	Name: "OtpChallenge",
	Fields: graphql.Fields{
		"email": &graphql.Field{
			Type: graphql.NewNonNull(graphql.String),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(*services.OtpChallenge).Email, nil
			},
		},
		"expiresAt": &graphql.Field{
			Type: graphql.NewNonNull(graphql.DateTime),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(*services.OtpChallenge).ExpiresAt, nil
			},
		},
	},
})

var transactionType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Transaction",
	Fields: graphql.Fields{
		"id": &graphql.Field{
			Type: graphql.NewNonNull(graphql.ID),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(models.Transaction).ID, nil
			},
		},
		"date": &graphql.Field{
			Type: graphql.NewNonNull(graphql.DateTime),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(models.Transaction).Date, nil
			},
		},
		"reference": &graphql.Field{
			Type: graphql.NewNonNull(graphql.String),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(models.Transaction).Reference, nil
			},
		},
		"description": &graphql.Field{
			Type: graphql.NewNonNull(graphql.String),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(models.Transaction).Description, nil
			},
		},
		"amount": &graphql.Field{
			Type: graphql.NewNonNull(graphql.Float),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(models.Transaction).Amount.InexactFloat64(), nil
			},
		},
		"type": &graphql.Field{
			Type: graphql.NewNonNull(graphql.String),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(models.Transaction).Type, nil
			},
		},
		"currency": &graphql.Field{
			Type: graphql.NewNonNull(graphql.String),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(models.Transaction).Currency, nil
			},
		},
		"status": &graphql.Field{
			Type: graphql.NewNonNull(graphql.String),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(models.Transaction).Status, nil
			},
		},
	},
})

var fixedDepositType = graphql.NewObject(graphql.ObjectConfig{
	Name: "FixedDeposit",
	Fields: graphql.Fields{
		"id": &graphql.Field{
			Type: graphql.NewNonNull(graphql.ID),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return fixedDepositSource(p).ID, nil
			},
		},
		"plan": &graphql.Field{
			Type: graphql.NewNonNull(graphql.String),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return fixedDepositSource(p).Plan, nil
			},
		},
		"currency": &graphql.Field{
			Type: graphql.NewNonNull(graphql.String),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return fixedDepositSource(p).Currency, nil
			},
		},
		"depositAmount": &graphql.Field{
			Type: graphql.NewNonNull(graphql.Float),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return fixedDepositSource(p).DepositAmount.InexactFloat64(), nil
			},
		},
		"returnAmount": &graphql.Field{
			Type: graphql.NewNonNull(graphql.Float),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return fixedDepositSource(p).ReturnAmount.InexactFloat64(), nil
			},
		},
		"status": &graphql.Field{
			Type: graphql.NewNonNull(graphql.String),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return fixedDepositSource(p).Status, nil
			},
		},
		"matureDate": &graphql.Field{
			Type: graphql.NewNonNull(graphql.DateTime),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return fixedDepositSource(p).MatureDate, nil
			},
		},
	},
})

// Apply returns a pointer, List returns values.
func fixedDepositSource(p graphql.ResolveParams) models.FixedDeposit {
	if fd, ok := p.Source.(*models.FixedDeposit); ok {
		return *fd
	}
	return p.Source.(models.FixedDeposit)
}

var ticketReplyType = graphql.NewObject(graphql.ObjectConfig{
	Name: "TicketReply",
	Fields: graphql.Fields{
		"author": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(models.TicketReply).Author, nil
			},
		},
		"message": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(models.TicketReply).Message, nil
			},
		},
		"createdAt": &graphql.Field{
			Type: graphql.DateTime,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(models.TicketReply).CreatedAt, nil
			},
		},
	},
})

var ticketType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Ticket",
	Fields: graphql.Fields{
		"id": &graphql.Field{
			Type: graphql.NewNonNull(graphql.ID),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return ticketSource(p).ID, nil
			},
		},
		"ticketId": &graphql.Field{
			Type: graphql.NewNonNull(graphql.String),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return ticketSource(p).TicketID, nil
			},
		},
		"subject": &graphql.Field{
			Type: graphql.NewNonNull(graphql.String),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return ticketSource(p).Subject, nil
			},
		},
		"status": &graphql.Field{
			Type: graphql.NewNonNull(graphql.String),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return ticketSource(p).Status, nil
			},
		},
		"replies": &graphql.Field{
			Type: graphql.NewList(ticketReplyType),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return ticketSource(p).Replies, nil
			},
		},
		"createdAt": &graphql.Field{
			Type: graphql.DateTime,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return ticketSource(p).CreatedAt, nil
			},
		},
		"updatedAt": &graphql.Field{
			Type: graphql.DateTime,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return ticketSource(p).UpdatedAt, nil
			},
		},
	},
})

func ticketSource(p graphql.ResolveParams) models.Ticket {
	if t, ok := p.Source.(*models.Ticket); ok {
		return *t
	}
	return p.Source.(models.Ticket)
}

// NewSchema assembles the executable schema around the resolver set.
func NewSchema(r *Resolver) (graphql.Schema, error) {
	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    r.queryType(),
		Mutation: r.mutationType(),
	})
}
