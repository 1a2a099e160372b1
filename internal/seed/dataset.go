package seed

import (
	"strconv"

	"github.com/google/uuid"
)

// User is a dashboard login. Password is plaintext and is hashed before it is stored.
type User struct {
	ID       string
	Name     string
	Email    string
	Password string
}

// Customer owns invoices.
type Customer struct {
	ID       string
	Name     string
	Email    string
	ImageURL string
}

// Invoice is billed to a customer.
type Invoice struct {
	CustomerID string
	Amount     int
	Status     string
	Date       string
}

// Revenue is the total for one month, keyed by a short month code.
type Revenue struct {
	Month  string
	Amount int
}

// Dataset groups everything a single seeding run inserts.
type Dataset struct {
	Users     []User
	Customers []Customer
	Invoices  []Invoice
	Revenue   []Revenue
}

var invoiceNamespace = uuid.MustParse("7d0f4bb6-2c0e-4b8f-9a57-5b3b1f3e6a10")

// ID derives a stable identifier so re-seeding the same invoice is a no-op.
func (i Invoice) ID() uuid.UUID {
	key := i.CustomerID + "|" + strconv.Itoa(i.Amount) + "|" + i.Status + "|" + i.Date
	return uuid.NewSHA1(invoiceNamespace, []byte(key))
}

// Placeholder returns the demo dataset used by the dashboard.
func Placeholder() Dataset {
	customers := []Customer{
		{
			ID:       "d6e15727-9fe1-4961-8c5b-ea44a9bd81aa",
			Name:     "Evil Rabbit",
			Email:    "evil@rabbit.com",
			ImageURL: "/customers/evil-rabbit.png",
		},
		{
			ID:       "3958dc9e-712f-4377-85e9-fec4b6a6442a",
			Name:     "Delba de Oliveira",
			Email:    "delba@oliveira.com",
			ImageURL: "/customers/delba-de-oliveira.png",
		},
		{
			ID:       "3958dc9e-742f-4377-85e9-fec4b6a6442a",
			Name:     "Lee Robinson",
			Email:    "lee@robinson.com",
			ImageURL: "/customers/lee-robinson.png",
		},
		{
			ID:       "76d65c26-f784-44a2-ac19-586678f7c2f2",
			Name:     "Michael Novotny",
			Email:    "michael@novotny.com",
			ImageURL: "/customers/michael-novotny.png",
		},
		{
			ID:       "cc27c14a-0acf-4f4a-a6c9-d45682c144b9",
			Name:     "Amy Burns",
			Email:    "amy@burns.com",
			ImageURL: "/customers/amy-burns.png",
		},
		{
			ID:       "13d07535-c59e-4157-a011-f8d2ef4e0cbb",
			Name:     "Balazs Orban",
			Email:    "balazs@orban.com",
			ImageURL: "/customers/balazs-orban.png",
		},
	}

	invoice := func(c Customer, amount int, status, date string) Invoice {
		return Invoice{CustomerID: c.ID, Amount: amount, Status: status, Date: date}
	}

	return Dataset{
		Users: []User{
			{
				ID:       "410544b2-4001-4271-9855-fec4b6a6442a",
				Name:     "User",
				Email:    "user@nextmail.com",
				Password: "123456",
			},
		},
		Customers: customers,
		Invoices: []Invoice{
			invoice(customers[0], 15795, "pending", "2022-12-06"),
			invoice(customers[1], 20348, "pending", "2022-11-14"),
			invoice(customers[4], 3040, "paid", "2022-10-29"),
			invoice(customers[3], 44800, "paid", "2023-09-10"),
			invoice(customers[5], 34577, "pending", "2023-08-05"),
			invoice(customers[2], 54246, "pending", "2023-07-16"),
			invoice(customers[0], 666, "pending", "2023-06-27"),
			invoice(customers[3], 32545, "paid", "2023-06-09"),
			invoice(customers[4], 1250, "paid", "2023-06-17"),
			invoice(customers[5], 8546, "paid", "2023-06-07"),
			invoice(customers[1], 500, "paid", "2023-08-19"),
			invoice(customers[5], 8945, "paid", "2023-06-03"),
			invoice(customers[2], 1000, "paid", "2022-06-05"),
		},
		Revenue: []Revenue{
			{Month: "Jan", Amount: 2000},
			{Month: "Feb", Amount: 1800},
			{Month: "Mar", Amount: 2200},
			{Month: "Apr", Amount: 2500},
			{Month: "May", Amount: 2300},
			{Month: "Jun", Amount: 3200},
			{Month: "Jul", Amount: 3500},
			{Month: "Aug", Amount: 3700},
			{Month: "Sep", Amount: 2500},
			{Month: "Oct", Amount: 2800},
			{Month: "Nov", Amount: 3000},
			{Month: "Dec", Amount: 4800},
		},
	}
}
