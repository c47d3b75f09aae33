package user

import (
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/elimucd/maendeleo/core"
)

func TestMaxRolePriority(t *testing.T) {
	tests := []struct {
		name  string
		roles []string
		want  int
	}{
		{name: "empty", roles: nil, want: 0},
		{name: "student", roles: StudentRoles, want: 1},
		{name: "teacher", roles: TeacherRoles, want: 11},
		{name: "admin", roles: AdminRoles, want: 30},
		{name: "mixed keeps highest", roles: []string{RoleStudent, RoleTeacher}, want: 11},
		{name: "unknown role ignored", roles: []string{"lol:"}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaxRolePriority(tt.roles); got != tt.want {
				t.Errorf("MaxRolePriority() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUser_IsStaff(t *testing.T) {
	tests := []struct {
		name  string
		roles []string
		want  bool
	}{
		{name: "student", roles: StudentRoles},
		{name: "teacher", roles: TeacherRoles, want: true},
		{name: "admin", roles: []string{RoleAdminPrincipal}, want: true},
		{name: "no roles", roles: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			usr := User{Roles: tt.roles}
			if got := usr.IsStaff(); got != tt.want {
				t.Errorf("IsStaff() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUser_CheckPassword(t *testing.T) {
	usr := User{}
	if err := usr.SetPassword("LmaoZedong.1"); err != nil {
		t.Fatalf("SetPassword() error = %v", err)
	}
	if err := usr.CheckPassword("LmaoZedong.1"); err != nil {
		t.Errorf("CheckPassword() error = %v, want nil", err)
	}
	if err := usr.CheckPassword("nope"); err == nil {
		t.Error("CheckPassword() error = nil, want mismatch")
	}
}

func TestNewUser_passwordPolicy(t *testing.T) {
	validate := validator.New()
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)
	InitValidators(validate, translator)

	newUser := func(pwd string) NewUser {
		return NewUser{
			Name:            "Timon Leonard",
			Username:        "timonvl",
			Email:           "timon@test.test",
			Password:        pwd,
			PasswordConfirm: pwd,
		}
	}

	tests := []struct {
		name    string
		nu      NewUser
		wantTag string
	}{
		{name: "too short", nu: newUser("Lmao.1"), wantTag: pwdMinLenTag},
		{name: "whitespace", nu: newUser("Lmao Zedong.1"), wantTag: pwdNoSpaceTag},
		{name: "all numeric", nu: newUser("12345678"), wantTag: pwdNotAllNumTag},
		{name: "no special char", nu: newUser("LmaoZedong1"), wantTag: pwdComplexityTag},
		{name: "no digit", nu: newUser("LmaoZedong."), wantTag: pwdComplexityTag},
		{name: "similar to username", nu: newUser("timonvl.A1"), wantTag: pwdAttrSimTag},
		{name: "username or email required", nu: NewUser{Name: "T", Password: "LmaoZedong.1", PasswordConfirm: "LmaoZedong.1"}, wantTag: usernameOrEmailTag},
		{name: "valid", nu: newUser("LmaoZedong.1")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Struct(tt.nu)
			if tt.wantTag == "" {
				if err != nil {
					t.Errorf("Struct() error = %v, want nil", err)
				}
				return
			}
			fieldErrs, ok := err.(validator.ValidationErrors)
			if !ok {
				t.Fatalf("Struct() error = %v, want validator.ValidationErrors", err)
			}
			for _, fe := range fieldErrs {
				if fe.Tag() == tt.wantTag {
					return
				}
			}
			t.Errorf("Struct() errors = %v, want tag %q", fieldErrs, tt.wantTag)
		})
	}
}
