// Package validator builds declarative validation from small Rule values.
//
// Each rule pairs a Check func with the field-level ValidationError it
// reports. Apply runs the rules and aggregates failures into
// ValidationErrors, which implements error and unwraps to the sentinel
// errors attached with Rule.Because:
//
//	err := validator.Apply(
//	    validator.RequiredString("recipient_id", p.RecipientID).Because(ErrRecipientRequired),
//	    validator.OneOf("type", p.Type, AllTypes).Because(ErrUnknownType),
//	    validator.When(p.Type.RequiresTrigger(),
//	        validator.RequiredString("triggered_by_id", p.TriggeredByID)),
//	)
//	if verrs := validator.ExtractValidationErrors(err); verrs != nil {
//	    // verrs.Fields(), verrs.Get("type") ...
//	}
//
// errors.Is(err, ErrUnknownType) holds for the aggregate as well.
package validator
