package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Property struct {
	ID                           primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	UserID                       primitive.ObjectID   `bson:"userId" json:"userId"`
	Slug                         string               `bson:"slug" json:"slug"`
	FirstName                    string               `bson:"firstName" json:"firstName"`
	LastName                     string               `bson:"lastName" json:"lastName"`
	OwnerName                    string               `bson:"ownerName,omitempty" json:"ownerName,omitempty"`
	OwnersContactNumber          string               `bson:"ownersContactNumber" json:"ownersContactNumber"`
	OwnersAlternateContactNumber string               `bson:"ownersAlternateContactNumber" json:"ownersAlternateContactNumber"`
	CurrentResidenceOfOwner      string               `bson:"currentResidenceOfOwner,omitempty" json:"currentResidenceOfOwner,omitempty"`
	Pincode                      string               `bson:"pincode" json:"pincode"`
	City                         string               `bson:"city" json:"city"`
	Locality                     string               `bson:"locality" json:"locality"`
	Address                      string               `bson:"address" json:"address"`
	NearestLandmark              string               `bson:"nearestLandmark" json:"nearestLandmark"`
	LocationLink                 string               `bson:"locationLink" json:"locationLink"`
	SpaceType                    string               `bson:"spaceType" json:"spaceType"`
	PropertyType                 string               `bson:"propertyType" json:"propertyType"`
	Type                         string               `bson:"type" json:"type"`
	BHK                          float64              `bson:"bhk" json:"bhk"`
	Floor                        string               `bson:"floor" json:"floor"`
	Preference                   string               `bson:"preference" json:"preference"`
	GenderPreference             string               `bson:"genderPreference" json:"genderPreference"`
	Bachelors                    string               `bson:"bachelors" json:"bachelors"`
	TypeOfWashroom               string               `bson:"typeOfWashroom" json:"typeOfWashroom"`
	CoolingFacility              string               `bson:"coolingFacility" json:"coolingFacility"`
	Appliances                   string               `bson:"appliances" json:"appliances"`
	Amenities                    string               `bson:"amenities" json:"amenities"`
	PetsAllowed                  bool                 `bson:"petsAllowed" json:"petsAllowed"`
	CarParking                   bool                 `bson:"carParking" json:"carParking"`
	Rent                         float64              `bson:"rent" json:"rent"`
	Security                     float64              `bson:"security" json:"security"`
	SquareFeetArea               float64              `bson:"squareFeetArea" json:"squareFeetArea"`
	Concession                   float64              `bson:"concession,omitempty" json:"concession,omitempty"`
	SubscriptionAmount           float64              `bson:"subscriptionAmount,omitempty" json:"subscriptionAmount,omitempty"`
	Images                       []string             `bson:"images" json:"images"`
	Reviews                      []primitive.ObjectID `bson:"reviews" json:"reviews"`
	AboutTheProperty             string               `bson:"aboutTheProperty" json:"aboutTheProperty"`
	Comments                     string               `bson:"comments" json:"comments"`
	CommentByAnalyst             string               `bson:"commentByAnalyst,omitempty" json:"commentByAnalyst,omitempty"`
	CreatedAt                    time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt                    time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// PropertyDetail is a property with its review ids expanded to full reviews,
// in the order they were added.
type PropertyDetail struct {
	Property
	Reviews []Review `json:"reviews"`
}

// PropertyUpdate carries a partial update. A nil field was not sent; any
// non-nil value, including zero values, replaces the stored one.
type PropertyUpdate struct {
	FirstName                    *string    `json:"firstName"`
	LastName                     *string    `json:"lastName"`
	OwnerName                    *string    `json:"ownerName"`
	OwnersContactNumber          *string    `json:"ownersContactNumber"`
	OwnersAlternateContactNumber *string    `json:"ownersAlternateContactNumber"`
	CurrentResidenceOfOwner      *string    `json:"currentResidenceOfOwner"`
	Pincode                      *string    `json:"pincode"`
	City                         *string    `json:"city"`
	Locality                     *string    `json:"locality"`
	Address                      *string    `json:"address"`
	NearestLandmark              *string    `json:"nearestLandmark"`
	LocationLink                 *string    `json:"locationLink"`
	SpaceType                    *string    `json:"spaceType"`
	PropertyType                 *string    `json:"propertyType"`
	Type                         *string    `json:"type"`
	BHK                          *FlexFloat `json:"bhk"`
	Floor                        *string    `json:"floor"`
	Preference                   *string    `json:"preference"`
	GenderPreference             *string    `json:"genderPreference"`
	Bachelors                    *string    `json:"bachelors"`
	TypeOfWashroom               *string    `json:"typeOfWashroom"`
	CoolingFacility              *string    `json:"coolingFacility"`
	Appliances                   *string    `json:"appliances"`
	Amenities                    *string    `json:"amenities"`
	PetsAllowed                  *FlexBool  `json:"petsAllowed"`
	CarParking                   *FlexBool  `json:"carParking"`
	Rent                         *FlexFloat `json:"rent"`
	Security                     *FlexFloat `json:"security"`
	SquareFeetArea               *FlexFloat `json:"squareFeetArea"`
	Concession                   *FlexFloat `json:"concession"`
	SubscriptionAmount           *FlexFloat `json:"subscriptionAmount"`
	AboutTheProperty             *string    `json:"aboutTheProperty"`
	Comments                     *string    `json:"comments"`
	CommentByAnalyst             *string    `json:"commentByAnalyst"`
}

// Apply copies every present field onto p.
func (u *PropertyUpdate) Apply(p *Property) {
	setString(&p.FirstName, u.FirstName)
	setString(&p.LastName, u.LastName)
	setString(&p.OwnerName, u.OwnerName)
	setString(&p.OwnersContactNumber, u.OwnersContactNumber)
	setString(&p.OwnersAlternateContactNumber, u.OwnersAlternateContactNumber)
	setString(&p.CurrentResidenceOfOwner, u.CurrentResidenceOfOwner)
	setString(&p.Pincode, u.Pincode)
	setString(&p.City, u.City)
	setString(&p.Locality, u.Locality)
	setString(&p.Address, u.Address)
	setString(&p.NearestLandmark, u.NearestLandmark)
	setString(&p.LocationLink, u.LocationLink)
	setString(&p.SpaceType, u.SpaceType)
	setString(&p.PropertyType, u.PropertyType)
	setString(&p.Type, u.Type)
	setString(&p.Floor, u.Floor)
	setString(&p.Preference, u.Preference)
	setString(&p.GenderPreference, u.GenderPreference)
	setString(&p.Bachelors, u.Bachelors)
	setString(&p.TypeOfWashroom, u.TypeOfWashroom)
	setString(&p.CoolingFacility, u.CoolingFacility)
	setString(&p.Appliances, u.Appliances)
	setString(&p.Amenities, u.Amenities)
	setString(&p.AboutTheProperty, u.AboutTheProperty)
	setString(&p.Comments, u.Comments)
	setString(&p.CommentByAnalyst, u.CommentByAnalyst)

	setFloat(&p.BHK, u.BHK)
	setFloat(&p.Rent, u.Rent)
	setFloat(&p.Security, u.Security)
	setFloat(&p.SquareFeetArea, u.SquareFeetArea)
	setFloat(&p.Concession, u.Concession)
	setFloat(&p.SubscriptionAmount, u.SubscriptionAmount)

	if u.PetsAllowed != nil {
		p.PetsAllowed = bool(*u.PetsAllowed)
	}
	if u.CarParking != nil {
		p.CarParking = bool(*u.CarParking)
	}
}

// Numbers returns the numeric fields present in the update, keyed by name.
func (u *PropertyUpdate) Numbers() map[string]*FlexFloat {
	return map[string]*FlexFloat{
		"bhk":                u.BHK,
		"rent":               u.Rent,
		"security":           u.Security,
		"squareFeetArea":     u.SquareFeetArea,
		"concession":         u.Concession,
		"subscriptionAmount": u.SubscriptionAmount,
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *FlexFloat) {
	if v != nil {
		*dst = float64(*v)
	}
}
