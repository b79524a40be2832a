package verify

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/playwright-community/playwright-go"
)

// User is one row of the admin page's user table.
type User struct {
	ID       string `yaml:"id"`
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
}

var ErrNoUserTable = errors.New("no user table on page")

func WaitForUserTable(page playwright.Page, timeout time.Duration) error {
	err := expect.Locator(page.Locator("table")).ToBeVisible(playwright.LocatorAssertionsToBeVisibleOptions{
		Timeout: milliseconds(timeout),
	})
	if err != nil {
		return fmt.Errorf("waiting for user table: %w", err)
	}
	return nil
}

func GetAdminPage(page playwright.Page) (*bytes.Buffer, error) {
	content, err := page.Content()
	if err != nil {
		return nil, err
	}

	buf := bytes.NewBuffer([]byte(content))
	return buf, nil
}

// userTableColumns finds the ID, Username and Email columns by their header
// text, falling back to the order the admin page renders them in.
func userTableColumns(table *goquery.Selection) (id, username, email int) {
	id, username, email = 0, 1, 2

	table.Find("thead th").Each(func(i int, s *goquery.Selection) {
		switch strings.ToLower(strings.TrimSpace(s.Text())) {
		case "id":
			id = i
		case "username":
			username = i
		case "email":
			email = i
		}
	})

	return id, username, email
}

func ParseAdminPage(page io.Reader) ([]User, error) {
	doc, err := goquery.NewDocumentFromReader(page)
	if err != nil {
		return nil, err
	}

	// find the table element
	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, ErrNoUserTable
	}

	idCol, usernameCol, emailCol := userTableColumns(table)

	users := []User{}

	table.Find("tbody > tr").Each(func(i int, s *goquery.Selection) {
		cells := s.Find("td")
		if cells.Length() == 0 {
			return
		}

		cell := func(i int) string {
			return strings.TrimSpace(cells.Eq(i).Text())
		}

		users = append(users, User{
			ID:       cell(idCol),
			Username: cell(usernameCol),
			Email:    cell(emailCol),
		})
	})

	return users, nil
}
